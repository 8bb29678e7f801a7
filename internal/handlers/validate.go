package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shopaudit/catalog-validator/config"
	"github.com/shopaudit/catalog-validator/internal/catalog"
	"github.com/shopaudit/catalog-validator/internal/database"
	"github.com/shopaudit/catalog-validator/internal/fetch"
	"github.com/shopaudit/catalog-validator/internal/middleware"
	"github.com/shopaudit/catalog-validator/internal/parsers/csv"
	"github.com/shopaudit/catalog-validator/internal/parsers/xlsx"
	"github.com/shopaudit/catalog-validator/internal/storage"
	"github.com/shopaudit/catalog-validator/internal/validate"
)

// maxUploadBytes bounds uploaded export size.
const maxUploadBytes = 100 << 20

// ValidateResponse is the JSON payload for a completed validation run.
type ValidateResponse struct {
	RunID         int64                     `json:"runId,omitempty"`
	ArchiveKey    string                    `json:"archiveKey,omitempty"`
	Filename      string                    `json:"filename"`
	RowsProcessed int                       `json:"rowsProcessed"`
	IssueCount    int                       `json:"issueCount"`
	Summary       map[validate.Category]int `json:"summary"`
	Issues        []validate.Issue          `json:"issues"`
}

// Validator handles catalog validation requests.
type Validator struct {
	cfg     *config.Config
	logger  zerolog.Logger
	archive storage.Archive
}

// NewValidator creates the validation handler. archive may be nil, in which
// case uploads are not kept after the run.
func NewValidator(cfg *config.Config, logger zerolog.Logger, archive storage.Archive) *Validator {
	return &Validator{cfg: cfg, logger: logger, archive: archive}
}

// Validate accepts a multipart catalog export upload, runs the engine, and
// returns the report as JSON. The run is persisted when a database is
// configured.
func (h *Validator) Validate(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to open upload: %v", err)})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to read upload: %v", err)})
		return
	}

	h.runValidation(c, content, fileHeader.Filename, true)
}

// runValidation parses content, runs the engine, and writes the JSON
// response. archiveUpload controls whether the content is stored in the
// upload archive; revalidation of already-archived content must not store a
// second copy.
func (h *Validator) runValidation(c *gin.Context, content []byte, filename string, archiveUpload bool) {
	load, err := h.parse(content, filename)
	if err != nil {
		var schemaErr *catalog.SchemaError
		if errors.As(err, &schemaErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": schemaErr.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := validate.NewEngine(validate.Options{
		Workers: h.cfg.Validation.Workers,
		Fetch: fetch.Config{
			Timeout:           h.cfg.Validation.FetchTimeout,
			RequestsPerSecond: h.cfg.Validation.RequestsPerSecond,
		},
		Image: validate.ImageOptions{
			RequiredWidth:  h.cfg.Validation.ImageWidth,
			RequiredHeight: h.cfg.Validation.ImageHeight,
		},
		Logger: h.logger,
	})

	started := time.Now()
	rep, err := engine.Run(c.Request.Context(), load)
	if err != nil {
		var schemaErr *catalog.SchemaError
		if errors.As(err, &schemaErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": schemaErr.Error()})
			return
		}
		// Client went away mid-run; nothing useful to respond with.
		h.logger.Warn().Err(err).Msg("Validation run aborted")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	middleware.RunsTotal.Inc()
	middleware.RunDuration.Observe(time.Since(started).Seconds())
	for cat, count := range rep.Summary() {
		middleware.IssuesTotal.WithLabelValues(string(cat)).Add(float64(count))
	}

	response := ValidateResponse{
		Filename:      filename,
		RowsProcessed: rep.RowsProcessed,
		IssueCount:    rep.Total(),
		Summary:       rep.Summary(),
		Issues:        rep.Issues,
	}

	if database.Pool() != nil {
		runID, err := database.SaveReport(c.Request.Context(), filename, started, rep)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to persist validation run")
		} else {
			response.RunID = runID
		}
	}

	if archiveUpload && h.archive != nil {
		key := storage.BuildUploadKey(filename, storage.Checksum(content), started)
		meta := &storage.Metadata{
			OriginalName: filename,
			ContentType:  http.DetectContentType(content),
			UploadedAt:   started,
			RunID:        response.RunID,
		}
		if err := h.archive.Put(c.Request.Context(), key, content, meta); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to archive upload")
		} else {
			response.ArchiveKey = key
		}
	}

	c.JSON(http.StatusOK, response)
}

// parse picks the loader from the file extension.
func (h *Validator) parse(content []byte, filename string) (*catalog.LoadResult, error) {
	catalogOpts := catalog.Options{
		ImageColumn: h.cfg.Validation.ImageColumn,
		HTMLColumns: h.cfg.Validation.HTMLColumns,
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return xlsx.NewParser(xlsx.Options{Catalog: catalogOpts}).Parse(content, filename)
	case ".csv", ".txt":
		return csv.NewParser(csv.Options{Catalog: catalogOpts}).Parse(content, filename)
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .xlsx or .csv", filepath.Ext(filename))
	}
}
