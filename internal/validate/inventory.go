package validate

import (
	"fmt"
	"strconv"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

// InventoryValidator checks that the inventory quantity is a non-negative
// integer. An empty cell counts as zero, which is valid.
type InventoryValidator struct{}

// NewInventoryValidator returns an inventory validator.
func NewInventoryValidator() *InventoryValidator {
	return &InventoryValidator{}
}

// Validate emits at most one issue per row: a format failure suppresses the
// negativity check since no value was parsed.
func (v *InventoryValidator) Validate(row catalog.Row) []Issue {
	if row.InventoryQty == "" {
		return nil
	}

	qty, err := strconv.Atoi(row.InventoryQty)
	if err != nil {
		return []Issue{newIssue(row.SKU, CodeInventoryFormat,
			fmt.Sprintf("inventory quantity %q is not a valid integer", row.InventoryQty))}
	}

	if qty < 0 {
		return []Issue{newIssue(row.SKU, CodeInventoryNegative,
			fmt.Sprintf("negative inventory quantity: %d", qty))}
	}

	return nil
}
