package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

func seqRow(sku, title string, position int) catalog.Row {
	return catalog.Row{
		SKU:         sku,
		Title:       title,
		Position:    position,
		PositionOK:  true,
		PositionRaw: "",
	}
}

func TestBaseTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Widget", "Widget"},
		{"Widget 2", "Widget"},
		{"Widget 10", "Widget"},
		{"Model 3", "Model"}, // literal suffix stripping, numeric names included
		{"Widget2", "Widget2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseTitle(tt.title), tt.title)
	}
}

func TestSequencerCleanGroup(t *testing.T) {
	rows := []catalog.Row{
		seqRow("W-1", "Widget", 1),
		seqRow("W-2", "Widget 2", 2),
		seqRow("W-3", "Widget 3", 3),
	}
	assert.Empty(t, NewSequencer().Validate(rows))
}

func TestSequencerPositionGap(t *testing.T) {
	rows := []catalog.Row{
		seqRow("G-1", "Gadget", 1),
		seqRow("G-2", "Gadget 2", 3),
	}

	issues := NewSequencer().Validate(rows)
	require.Len(t, issues, 1)
	assert.Equal(t, CodeVariantOrderSeq, issues[0].Code)
	assert.Equal(t, "G-2", issues[0].SKU)
	assert.Contains(t, issues[0].Message, "expected position 2")
	assert.Contains(t, issues[0].Message, "got 3")
}

func TestSequencerDuplicatePositions(t *testing.T) {
	rows := []catalog.Row{
		seqRow("D-1", "Doohickey", 1),
		seqRow("D-2", "Doohickey 2", 1),
	}

	issues := NewSequencer().Validate(rows)

	// File order breaks the tie, so the second row lands at rank 2
	// while still claiming position 1.
	require.Len(t, issues, 1)
	assert.Equal(t, CodeVariantOrderSeq, issues[0].Code)
	assert.Equal(t, "D-2", issues[0].SKU)
}

func TestSequencerTitleNumbering(t *testing.T) {
	tests := []struct {
		name   string
		rows   []catalog.Row
		sku    string
		expect string
	}{
		{
			name: "first variant must carry bare base title",
			rows: []catalog.Row{
				seqRow("T-1", "Thing 1", 1),
			},
			sku:    "T-1",
			expect: `"Thing"`,
		},
		{
			name: "later variant must carry its rank",
			rows: []catalog.Row{
				seqRow("T-1", "Thing", 1),
				seqRow("T-2", "Thing 3", 2),
			},
			sku:    "T-2",
			expect: `"Thing 2"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var titleIssues []Issue
			for _, issue := range NewSequencer().Validate(tt.rows) {
				if issue.Code == CodeVariantOrderTitle {
					titleIssues = append(titleIssues, issue)
				}
			}
			require.NotEmpty(t, titleIssues)
			assert.Equal(t, tt.sku, titleIssues[0].SKU)
			assert.Contains(t, titleIssues[0].Message, tt.expect)
		})
	}
}

func TestSequencerSingleRowGroup(t *testing.T) {
	// A lone variant still needs position 1 and an unsuffixed title.
	rows := []catalog.Row{seqRow("S-1", "Solo", 2)}

	issues := NewSequencer().Validate(rows)
	require.Len(t, issues, 1)
	assert.Equal(t, CodeVariantOrderSeq, issues[0].Code)
}

func TestSequencerNonNumericPosition(t *testing.T) {
	rows := []catalog.Row{
		seqRow("N-1", "Nut", 1),
		{SKU: "N-2", Title: "Nut 2", PositionRaw: "second"},
	}

	issues := NewSequencer().Validate(rows)
	require.Len(t, issues, 1)
	assert.Equal(t, CodeVariantOrderSeq, issues[0].Code)
	assert.Equal(t, "N-2", issues[0].SKU)
	assert.Contains(t, issues[0].Message, "not numeric")
}

func TestSequencerStableTieBreakByFileOrder(t *testing.T) {
	// Two distinct groups interleaved in the file stay independent.
	rows := []catalog.Row{
		seqRow("A-1", "Alpha", 1),
		seqRow("B-1", "Beta", 1),
		seqRow("A-2", "Alpha 2", 2),
		seqRow("B-2", "Beta 2", 2),
	}
	assert.Empty(t, NewSequencer().Validate(rows))
}
