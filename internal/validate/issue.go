// Package validate implements the catalog validation engine: per-row checks
// (pricing, inventory, imagery, embedded HTML), the cross-row variant order
// checks, and the aggregation of findings into a categorized report.
package validate

import "sync"

// Category is the reporting bucket an issue lands in.
type Category string

const (
	CategoryInventory    Category = "Inventory"
	CategoryPrice        Category = "Price"
	CategoryImage        Category = "Image"
	CategoryHTML         Category = "HTML"
	CategoryVariantOrder Category = "Variant Order"
	CategoryOther        Category = "Other"
)

// Categories lists all buckets in report order.
var Categories = []Category{
	CategoryInventory,
	CategoryPrice,
	CategoryImage,
	CategoryHTML,
	CategoryVariantOrder,
	CategoryOther,
}

// Code identifies the specific rule behind an issue.
type Code string

const (
	CodePriceFormat        Code = "PriceFormatError"
	CodePriceMissing       Code = "PriceMissingError"
	CodePriceNonPositive   Code = "PriceNonPositiveError"
	CodePriceHierarchy     Code = "PriceHierarchyError"
	CodePriceFormula       Code = "PriceFormulaError"
	CodeInventoryFormat    Code = "InventoryFormatError"
	CodeInventoryNegative  Code = "InventoryNegativeError"
	CodeImageURLFormat     Code = "ImageUrlFormatError"
	CodeImageDomain        Code = "ImageDomainError"
	CodeImageExtension     Code = "ImageExtensionError"
	CodeImageFetch         Code = "ImageFetchError"
	CodeImageDimension     Code = "ImageDimensionError"
	CodeHTMLStructure      Code = "HtmlStructureError"
	CodeHTMLMissingAttr    Code = "HtmlMissingAttributeError"
	CodeHTMLListStructure  Code = "HtmlListStructureError"
	CodeVariantOrderSeq    Code = "VariantOrderSequenceError"
	CodeVariantOrderTitle  Code = "VariantOrderTitleError"
	CodeOther              Code = "OtherError"
)

var codeCategories = map[Code]Category{
	CodePriceFormat:       CategoryPrice,
	CodePriceMissing:      CategoryPrice,
	CodePriceNonPositive:  CategoryPrice,
	CodePriceHierarchy:    CategoryPrice,
	CodePriceFormula:      CategoryPrice,
	CodeInventoryFormat:   CategoryInventory,
	CodeInventoryNegative: CategoryInventory,
	CodeImageURLFormat:    CategoryImage,
	CodeImageDomain:       CategoryImage,
	CodeImageExtension:    CategoryImage,
	CodeImageFetch:        CategoryImage,
	CodeImageDimension:    CategoryImage,
	CodeHTMLStructure:     CategoryHTML,
	CodeHTMLMissingAttr:   CategoryHTML,
	CodeHTMLListStructure: CategoryHTML,
	CodeVariantOrderSeq:   CategoryVariantOrder,
	CodeVariantOrderTitle: CategoryVariantOrder,
	CodeOther:             CategoryOther,
}

// Category returns the reporting bucket for a code. Unknown codes fall into
// Other rather than getting dropped.
func (c Code) Category() Category {
	if cat, ok := codeCategories[c]; ok {
		return cat
	}
	return CategoryOther
}

// Issue is one validation finding. SKU may be empty for findings that are
// not attributable to a single row.
type Issue struct {
	SKU      string   `json:"sku"`
	Category Category `json:"category"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
}

func newIssue(sku string, code Code, message string) Issue {
	return Issue{
		SKU:      sku,
		Category: code.Category(),
		Code:     code,
		Message:  message,
	}
}

// Report is the terminal artifact of a validation run: every issue, in
// discovery order.
type Report struct {
	Issues        []Issue `json:"issues"`
	RowsProcessed int     `json:"rowsProcessed"`
}

// Summary counts issues per category. It is always derived from the issue
// list so the counts cannot drift from the detail view.
func (r *Report) Summary() map[Category]int {
	summary := make(map[Category]int)
	for _, issue := range r.Issues {
		summary[issue.Category]++
	}
	return summary
}

// Total returns the overall issue count.
func (r *Report) Total() int {
	return len(r.Issues)
}

// aggregator collects issues from concurrently running validators. Append is
// the only mutation, guarded by a single mutex. Issues from one row are added
// as a batch so a row's findings stay adjacent in the report.
type aggregator struct {
	mu     sync.Mutex
	issues []Issue
}

func (a *aggregator) add(issues ...Issue) {
	if len(issues) == 0 {
		return
	}
	a.mu.Lock()
	a.issues = append(a.issues, issues...)
	a.mu.Unlock()
}

func (a *aggregator) report(rows int) *Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	issues := make([]Issue, len(a.issues))
	copy(issues, a.issues)
	return &Report{Issues: issues, RowsProcessed: rows}
}
