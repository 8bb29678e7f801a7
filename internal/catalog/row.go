package catalog

// Row is one variant record from a catalog export. Rows are built once by a
// loader and treated as read-only afterwards; validators never mutate them.
type Row struct {
	// SKU identifies the variant in all issue reporting.
	SKU   string
	Title string

	// PositionRaw is the cell value as exported. Position is only meaningful
	// when PositionOK is true.
	PositionRaw string
	Position    int
	PositionOK  bool

	// Price fields are kept raw; the price validator owns parsing because
	// a malformed cell is a reportable finding, not a load error.
	VariantPrice string
	TraderPrice  string
	DealerPrice  string
	VariantCost  string

	InventoryQty string

	// ImageSrc may be a single URL, semicolon-separated URLs, or HTML
	// containing <img> tags.
	ImageSrc string

	// HTMLFields holds the HTML-bearing cells of this row, in column order.
	HTMLFields []HTMLField

	// Line is the 1-based position of the record in the source file,
	// used as a stable tie-breaker when ordering variants.
	Line int
}

// HTMLField is one HTML-bearing cell, tagged with its column name so issue
// messages can point at the offending column.
type HTMLField struct {
	Column  string
	Content string
}

// LoadResult is the output of a catalog loader: the immutable row set plus
// which optional columns the export actually carried. Checks that depend on
// an absent column are skipped, matching how operators trim their exports.
type LoadResult struct {
	Rows []Row

	// Filename is the source file, kept for reporting.
	Filename string

	HasTraderPrice bool
	HasDealerPrice bool
	HasImageSrc    bool

	// HTMLColumns lists the HTML-bearing columns present in the export.
	HTMLColumns []string

	// TotalRows counts data records seen, including skipped empty ones.
	TotalRows int
}
