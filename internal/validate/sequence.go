package validate

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

// trailingNumber matches a positional suffix like " 2" at the end of a
// title. Stripping it yields the base title a variant group shares.
var trailingNumber = regexp.MustCompile(`\s+\d+$`)

// BaseTitle strips a trailing positional number from a title. A title that
// is itself numeric-suffixed (e.g. "Model 3") is treated like any other,
// which is the documented behavior of the grouping rule.
func BaseTitle(title string) string {
	return trailingNumber.ReplaceAllString(title, "")
}

// Sequencer groups rows by base title and validates that each group's
// positions form the sequence 1..N and that titles carry the matching
// positional suffix.
type Sequencer struct{}

// NewSequencer returns a sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Validate runs the cross-row checks over the full row set. The row slice is
// only read; groups hold indices into it.
func (s *Sequencer) Validate(rows []catalog.Row) []Issue {
	groups := groupByBaseTitle(rows)

	var issues []Issue
	for _, g := range groups {
		issues = append(issues, s.validateGroup(rows, g)...)
	}
	return issues
}

type productGroup struct {
	baseTitle string
	members   []int // indices into the row set, file order
}

// groupByBaseTitle derives groups in first-appearance order so issue output
// is deterministic.
func groupByBaseTitle(rows []catalog.Row) []productGroup {
	byTitle := make(map[string]int)
	var groups []productGroup

	for i, row := range rows {
		base := BaseTitle(row.Title)
		gi, ok := byTitle[base]
		if !ok {
			gi = len(groups)
			byTitle[base] = gi
			groups = append(groups, productGroup{baseTitle: base})
		}
		groups[gi].members = append(groups[gi].members, i)
	}
	return groups
}

func (s *Sequencer) validateGroup(rows []catalog.Row, g productGroup) []Issue {
	var issues []Issue

	// Rows without a numeric position cannot take part in the ordering
	// comparison but are still reported as malformed.
	var ordered []int
	for _, i := range g.members {
		if !rows[i].PositionOK {
			issues = append(issues, newIssue(rows[i].SKU, CodeVariantOrderSeq,
				fmt.Sprintf("variant position %q is not numeric", rows[i].PositionRaw)))
			continue
		}
		ordered = append(ordered, i)
	}

	// Ascending by position, ties broken by file order.
	sort.SliceStable(ordered, func(a, b int) bool {
		return rows[ordered[a]].Position < rows[ordered[b]].Position
	})

	for rank, i := range ordered {
		row := rows[i]
		expected := rank + 1

		if row.Position != expected {
			issues = append(issues, newIssue(row.SKU, CodeVariantOrderSeq,
				fmt.Sprintf("position sequence broken: expected position %d, got %d", expected, row.Position)))
		}

		expectedTitle := g.baseTitle
		if expected > 1 {
			expectedTitle = fmt.Sprintf("%s %d", g.baseTitle, expected)
		}
		if row.Title != expectedTitle {
			issues = append(issues, newIssue(row.SKU, CodeVariantOrderTitle,
				fmt.Sprintf("title does not match position: expected %q, got %q", expectedTitle, row.Title)))
		}
	}

	return issues
}
