package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

// Dealer price rule: dealer <= variant / vatRate * dealerMarkup. A dealer
// price above that ceiling means VAT was not excluded before the markup
// was applied.
var (
	vatRate      = decimal.NewFromFloat(1.2)
	dealerMarkup = decimal.NewFromFloat(0.9)
)

// PriceValidator checks the four price fields of a row: parseability,
// presence, positivity, the price hierarchy, and the dealer price formula.
type PriceValidator struct{}

// NewPriceValidator returns a price validator.
func NewPriceValidator() *PriceValidator {
	return &PriceValidator{}
}

type priceField struct {
	name string
	raw  string
}

// Validate returns all price findings for one row. Trader and dealer prices
// are optional columns: a trimmed export that omits them is only checked on
// the fields it actually carries. Each present field is checked
// independently; the hierarchy and formula checks only run once every
// present field parsed cleanly, so a malformed cell cannot cascade into
// nonsense comparisons.
func (v *PriceValidator) Validate(row catalog.Row, hasTrader, hasDealer bool) []Issue {
	fields := []priceField{{catalog.ColumnVariantPrice, row.VariantPrice}}
	if hasTrader {
		fields = append(fields, priceField{catalog.ColumnTraderPrice, row.TraderPrice})
	}
	if hasDealer {
		fields = append(fields, priceField{catalog.ColumnDealerPrice, row.DealerPrice})
	}
	fields = append(fields, priceField{catalog.ColumnVariantCost, row.VariantCost})

	var issues []Issue
	values := make([]decimal.Decimal, len(fields))
	complete := true

	for i, f := range fields {
		value, issue := parsePriceField(row.SKU, f)
		if issue != nil {
			issues = append(issues, *issue)
			complete = false
			continue
		}
		values[i] = value
	}

	if !complete {
		issues = append(issues, newIssue(row.SKU, CodePriceHierarchy,
			"price fields incomplete, hierarchy checks skipped"))
		return issues
	}

	// Each adjacent pair of present fields must be strictly decreasing.
	// Violations are reported together, not short-circuited.
	for i := 0; i+1 < len(fields); i++ {
		if !values[i].GreaterThan(values[i+1]) {
			issues = append(issues, newIssue(row.SKU, CodePriceHierarchy,
				fmt.Sprintf("%s (%s) must be greater than %s (%s)",
					fields[i].name, values[i], fields[i+1].name, values[i+1])))
		}
	}

	// dealer <= variant/vatRate*markup, compared cross-multiplied so the
	// division cannot introduce rounding on the comparison itself. Only
	// checkable when the export carries a dealer price.
	if hasDealer {
		variant := values[0]
		dealerIdx := 1
		if hasTrader {
			dealerIdx = 2
		}
		dealer := values[dealerIdx]

		if dealer.Mul(vatRate).GreaterThan(variant.Mul(dealerMarkup)) {
			allowed := variant.Mul(dealerMarkup).DivRound(vatRate, 2)
			issues = append(issues, newIssue(row.SKU, CodePriceFormula,
				fmt.Sprintf("%s %s exceeds allowed maximum %s (%s / %s * %s); VAT must be excluded before markup",
					catalog.ColumnDealerPrice, dealer, allowed.StringFixed(2),
					catalog.ColumnVariantPrice, vatRate, dealerMarkup)))
		}
	}

	return issues
}

// parsePriceField strips a leading currency symbol and parses the remainder
// as a decimal. It returns either the parsed value or the single issue for
// this field.
func parsePriceField(sku string, f priceField) (decimal.Decimal, *Issue) {
	cleaned := stripCurrency(f.raw)
	if cleaned == "" {
		issue := newIssue(sku, CodePriceMissing, fmt.Sprintf("%s is empty", f.name))
		return decimal.Zero, &issue
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		issue := newIssue(sku, CodePriceFormat,
			fmt.Sprintf("%s %q is not a valid number", f.name, f.raw))
		return decimal.Zero, &issue
	}

	if !value.IsPositive() {
		issue := newIssue(sku, CodePriceNonPositive,
			fmt.Sprintf("%s %s must be greater than 0", f.name, value))
		return decimal.Zero, &issue
	}

	return value, nil
}

// stripCurrency removes a leading currency symbol and surrounding whitespace.
func stripCurrency(raw string) string {
	cleaned := strings.TrimSpace(raw)
	for _, sym := range []string{"$", "€", "£"} {
		if strings.HasPrefix(cleaned, sym) {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, sym))
			break
		}
	}
	return cleaned
}
