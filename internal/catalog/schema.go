package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known column headers of a catalog export.
const (
	ColumnSKU          = "Variant SKU"
	ColumnTitle        = "Title"
	ColumnPosition     = "Variant Position"
	ColumnVariantPrice = "Variant Price"
	ColumnTraderPrice  = "Trader Price"
	ColumnDealerPrice  = "Dealer Price"
	ColumnVariantCost  = "Variant Cost"
	ColumnInventoryQty = "Variant Inventory Qty"
	ColumnImageSrc     = "Image Src"
	ColumnBodyHTML     = "Body HTML"
)

// RequiredColumns must all be present for a validation run to make sense.
var RequiredColumns = []string{
	ColumnSKU,
	ColumnTitle,
	ColumnPosition,
	ColumnVariantPrice,
	ColumnVariantCost,
}

// SchemaError reports an export that cannot be validated at all: an empty
// file or one missing required columns. It aborts the run before any
// row-level check.
type SchemaError struct {
	MissingColumns []string
	Empty          bool
}

func (e *SchemaError) Error() string {
	if e.Empty {
		return "catalog export contains no rows"
	}
	return fmt.Sprintf("catalog export missing required columns: %s", strings.Join(e.MissingColumns, ", "))
}

// Options controls how records are mapped to rows.
type Options struct {
	// ImageColumn is the header of the image URL column. Default: Image Src.
	ImageColumn string
	// HTMLColumns are the headers subject to HTML validation. Default: Body HTML.
	HTMLColumns []string
}

func (o Options) withDefaults() Options {
	if o.ImageColumn == "" {
		o.ImageColumn = ColumnImageSrc
	}
	if o.HTMLColumns == nil {
		o.HTMLColumns = []string{ColumnBodyHTML}
	}
	return o
}

// columnIndex is the header -> position mapping for one export. Headers are
// matched case-insensitively after trimming, same as the spreadsheet tools
// the exports come out of.
type columnIndex map[string]int

func indexHeaders(headers []string) columnIndex {
	idx := make(columnIndex, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

func (c columnIndex) lookup(header string) (int, bool) {
	i, ok := c[strings.ToLower(header)]
	return i, ok
}

// FromRecords builds the immutable row set from a header record plus data
// records. It performs the one-time schema check: a missing required column
// or an empty record set returns a *SchemaError and no rows.
func FromRecords(headers []string, records [][]string, opts Options) (*LoadResult, error) {
	opts = opts.withDefaults()

	idx := indexHeaders(headers)

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx.lookup(col); !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{MissingColumns: missing}
	}

	cell := func(record []string, header string) string {
		i, ok := idx.lookup(header)
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	_, hasTrader := idx.lookup(ColumnTraderPrice)
	_, hasDealer := idx.lookup(ColumnDealerPrice)
	_, hasImage := idx.lookup(opts.ImageColumn)

	var htmlColumns []string
	for _, col := range opts.HTMLColumns {
		if _, ok := idx.lookup(col); ok {
			htmlColumns = append(htmlColumns, col)
		}
	}

	result := &LoadResult{
		Rows:           make([]Row, 0, len(records)),
		HasTraderPrice: hasTrader,
		HasDealerPrice: hasDealer,
		HasImageSrc:    hasImage,
		HTMLColumns:    htmlColumns,
	}

	for n, record := range records {
		result.TotalRows++
		if isEmptyRecord(record) {
			continue
		}

		row := Row{
			SKU:          cell(record, ColumnSKU),
			Title:        cell(record, ColumnTitle),
			PositionRaw:  cell(record, ColumnPosition),
			VariantPrice: cell(record, ColumnVariantPrice),
			TraderPrice:  cell(record, ColumnTraderPrice),
			DealerPrice:  cell(record, ColumnDealerPrice),
			VariantCost:  cell(record, ColumnVariantCost),
			InventoryQty: cell(record, ColumnInventoryQty),
			ImageSrc:     cell(record, opts.ImageColumn),
			Line:         n + 1,
		}

		if pos, err := strconv.Atoi(row.PositionRaw); err == nil {
			row.Position = pos
			row.PositionOK = true
		}

		for _, col := range htmlColumns {
			row.HTMLFields = append(row.HTMLFields, HTMLField{
				Column:  col,
				Content: cell(record, col),
			})
		}

		result.Rows = append(result.Rows, row)
	}

	if len(result.Rows) == 0 {
		return nil, &SchemaError{Empty: true}
	}

	return result, nil
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
