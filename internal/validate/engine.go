package validate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shopaudit/catalog-validator/internal/catalog"
	"github.com/shopaudit/catalog-validator/internal/fetch"
)

// ProgressFunc is invoked once per processed row, carrying the row's SKU and
// a monotonically increasing processed count. It is called from worker
// goroutines but never concurrently with itself.
type ProgressFunc func(sku string, processed, total int)

// Options configures an engine.
type Options struct {
	// Workers bounds how many rows are validated concurrently. Image
	// fetches are the only blocking I/O, so this is effectively the
	// network fan-out.
	Workers int
	// Fetch configures the image fetch client.
	Fetch fetch.Config
	// Image configures the dimension rule and DNS lookup.
	Image ImageOptions
	// Progress, when set, receives per-row progress.
	Progress ProgressFunc
	// Logger defaults to a disabled logger.
	Logger zerolog.Logger
}

// Engine runs the full validation pass over a loaded catalog: the cross-row
// sequencer plus the per-row price, inventory, image, and HTML validators,
// funneling every finding into one report.
type Engine struct {
	price     *PriceValidator
	inventory *InventoryValidator
	image     *ImageValidator
	html      *HTMLValidator
	sequencer *Sequencer

	workers  int
	progress ProgressFunc
	logger   zerolog.Logger
}

// NewEngine creates an engine. Each engine owns its image validator and its
// DNS cache, so concurrent engines never interfere.
func NewEngine(opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}
	return &Engine{
		price:     NewPriceValidator(),
		inventory: NewInventoryValidator(),
		image:     NewImageValidator(fetch.NewClient(opts.Fetch), opts.Image),
		html:      NewHTMLValidator(),
		sequencer: NewSequencer(),
		workers:   workers,
		progress:  opts.Progress,
		logger:    opts.Logger,
	}
}

// Run validates the row set and returns the report. Rows are read-only
// throughout; per-row validators run concurrently with bounded fan-out while
// the sequencer sees the full set up front. A cancelled context stops the
// run early and returns the partial report alongside the context error.
func (e *Engine) Run(ctx context.Context, load *catalog.LoadResult) (*Report, error) {
	if load == nil || len(load.Rows) == 0 {
		return nil, &catalog.SchemaError{Empty: true}
	}

	start := time.Now()
	agg := &aggregator{}
	rows := load.Rows
	total := len(rows)

	e.logger.Info().Int("rows", total).Str("file", load.Filename).Msg("Starting validation run")

	// Cross-row checks first, matching report ordering of earlier runs.
	agg.add(e.sequencer.Validate(rows)...)

	var progressMu sync.Mutex
	processed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range rows {
		row := rows[i]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			// One batch per row keeps a row's findings adjacent.
			var issues []Issue
			issues = append(issues, e.inventory.Validate(row)...)
			issues = append(issues, e.price.Validate(row, load.HasTraderPrice, load.HasDealerPrice)...)
			if load.HasImageSrc {
				issues = append(issues, e.image.Validate(gctx, row)...)
			}
			issues = append(issues, e.html.Validate(row)...)
			agg.add(issues...)

			progressMu.Lock()
			processed++
			if e.progress != nil {
				e.progress(row.SKU, processed, total)
			}
			progressMu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	report := agg.report(processed)

	e.logger.Info().
		Int("rows", report.RowsProcessed).
		Int("issues", report.Total()).
		Dur("elapsed", time.Since(start)).
		Msg("Validation run complete")

	if err != nil {
		// Partial report, best effort
		return report, err
	}
	return report, nil
}
