package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

func htmlRow(content string) catalog.Row {
	return catalog.Row{
		SKU: "SKU-1",
		HTMLFields: []catalog.HTMLField{
			{Column: "Body HTML", Content: content},
		},
	}
}

func TestHTMLValidatorCleanContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty field skipped", content: ""},
		{name: "plain paragraph", content: "<p>A fine product.</p>"},
		{
			name:    "full structure",
			content: `<div><a href="/care">care guide</a><img src="/p.jpg"/><ul><li>one</li><li>two</li></ul></div>`,
		},
	}

	v := NewHTMLValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, v.Validate(htmlRow(tt.content)))
		})
	}
}

func TestHTMLValidatorViolations(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode Code
		wantMsg  string
	}{
		{
			name:     "anchor without href",
			content:  `<p><a>click here</a></p>`,
			wantCode: CodeHTMLMissingAttr,
			wantMsg:  "href",
		},
		{
			name:     "anchor with empty href",
			content:  `<p><a href="">click</a></p>`,
			wantCode: CodeHTMLMissingAttr,
			wantMsg:  "href",
		},
		{
			name:     "image without src",
			content:  `<p><img alt="product"/></p>`,
			wantCode: CodeHTMLMissingAttr,
			wantMsg:  "src",
		},
		{
			name:     "unordered list without items",
			content:  `<ul><p>not a list item</p></ul>`,
			wantCode: CodeHTMLListStructure,
			wantMsg:  "<ul>",
		},
		{
			name:     "ordered list without items",
			content:  `<ol></ol>`,
			wantCode: CodeHTMLListStructure,
			wantMsg:  "<ol>",
		},
		{
			name:     "unclosed tag",
			content:  `<div><span>dangling`,
			wantCode: CodeHTMLStructure,
			wantMsg:  "unclosed",
		},
		{
			name:     "mismatched closing tag",
			content:  `<div><b>bold</div>`,
			wantCode: CodeHTMLStructure,
			wantMsg:  "mismatched",
		},
	}

	v := NewHTMLValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := v.Validate(htmlRow(tt.content))
			require.NotEmpty(t, issues)

			found := false
			for _, issue := range issues {
				if issue.Code == tt.wantCode {
					found = true
					assert.Equal(t, CategoryHTML, issue.Category)
					assert.Contains(t, issue.Message, tt.wantMsg)
					assert.Contains(t, issue.Message, "Body HTML")
				}
			}
			assert.True(t, found, "expected an issue with code %s", tt.wantCode)
		})
	}
}

func TestHTMLValidatorReportsAllViolationsInOneField(t *testing.T) {
	content := `<div><a>no href</a><img alt="x"/><ul></ul></div>`
	issues := NewHTMLValidator().Validate(htmlRow(content))

	codes := make(map[Code]int)
	for _, issue := range issues {
		codes[issue.Code]++
	}
	assert.Equal(t, 2, codes[CodeHTMLMissingAttr], "anchor and image both flagged")
	assert.Equal(t, 1, codes[CodeHTMLListStructure])
	assert.Len(t, issues, 3)
}

func TestHTMLValidatorMultipleFields(t *testing.T) {
	row := catalog.Row{
		SKU: "SKU-9",
		HTMLFields: []catalog.HTMLField{
			{Column: "Body HTML", Content: `<p><a>x</a></p>`},
			{Column: "Care Instructions", Content: `<ul></ul>`},
		},
	}

	issues := NewHTMLValidator().Validate(row)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "Body HTML")
	assert.Contains(t, issues[1].Message, "Care Instructions")
}
