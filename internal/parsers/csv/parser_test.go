package csv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Delimiter
	}{
		{
			name:    "comma",
			content: "Variant SKU,Title,Variant Price\nSKU-1,Widget,100",
			want:    DelimiterComma,
		},
		{
			name:    "semicolon",
			content: "Variant SKU;Title;Variant Price\nSKU-1;Widget;100",
			want:    DelimiterSemicolon,
		},
		{
			name:    "tab",
			content: "Variant SKU\tTitle\tVariant Price\nSKU-1\tWidget\t100",
			want:    DelimiterTab,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.content))
		})
	}
}

func TestParserLoadsCatalog(t *testing.T) {
	content := "Variant SKU,Title,Variant Position,Variant Price,Variant Cost\n" +
		"SKU-1,Widget,1,100,50\n" +
		"SKU-2,Widget 2,2,100,50\n"

	result, err := NewParser(Options{}).Parse([]byte(content), "catalog.csv")
	require.NoError(t, err)
	assert.Equal(t, "catalog.csv", result.Filename)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "SKU-2", result.Rows[1].SKU)
	assert.Equal(t, 2, result.Rows[1].Position)
}

func TestParserSemicolonDelimited(t *testing.T) {
	content := "Variant SKU;Title;Variant Position;Variant Price;Variant Cost\n" +
		"SKU-1;Widget;1;100;50\n"

	result, err := NewParser(Options{}).Parse([]byte(content), "catalog.csv")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Widget", result.Rows[0].Title)
}

func TestParserWindows1252Content(t *testing.T) {
	// "Café" with an 0xE9 é byte, as legacy ERP exports produce.
	header := "Variant SKU,Title,Variant Position,Variant Price,Variant Cost\n"
	record := append([]byte("SKU-1,Caf"), 0xE9)
	record = append(record, []byte(",1,100,50\n")...)
	content := append([]byte(header), record...)

	result, err := NewParser(Options{}).Parse(content, "legacy.csv")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Café", result.Rows[0].Title)
}

func TestParserMissingColumns(t *testing.T) {
	content := "Variant SKU,Title\nSKU-1,Widget\n"

	_, err := NewParser(Options{}).Parse([]byte(content), "catalog.csv")

	var schemaErr *catalog.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.NotEmpty(t, schemaErr.MissingColumns)
}

func TestParserEmptyFile(t *testing.T) {
	_, err := NewParser(Options{}).Parse([]byte(""), "catalog.csv")

	var schemaErr *catalog.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.True(t, schemaErr.Empty)
}
