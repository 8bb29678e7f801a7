// Package csv loads catalog exports from CSV files, the other format
// storefront platforms export catalogs in.
package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"strings"

	"github.com/shopaudit/catalog-validator/internal/catalog"
	"github.com/shopaudit/catalog-validator/internal/parsers/charset"
)

// Parser reads a CSV catalog export into rows.
type Parser struct {
	options Options
}

// Options controls CSV parsing.
type Options struct {
	// Encoding forces an input encoding. Empty means auto-detect.
	Encoding charset.Encoding
	// Delimiter forces a field separator. Zero means auto-detect.
	Delimiter Delimiter
	// Catalog controls column mapping.
	Catalog catalog.Options
}

// NewParser creates a CSV parser.
func NewParser(options Options) *Parser {
	return &Parser{options: options}
}

// Parse reads CSV content. The first record is the header; a missing
// required column or an empty file surfaces as *catalog.SchemaError.
func (p *Parser) Parse(content []byte, filename string) (*catalog.LoadResult, error) {
	enc := p.options.Encoding
	if enc == "" {
		enc = charset.Detect(content)
	}

	decoded, err := charset.Decode(content, enc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	delim := p.options.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(decoded)
	}

	reader := stdcsv.NewReader(strings.NewReader(decoded))
	reader.Comma = rune(delim)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, &catalog.SchemaError{Empty: true}
	}

	result, err := catalog.FromRecords(records[0], records[1:], p.options.Catalog)
	if err != nil {
		return nil, err
	}
	result.Filename = filename
	return result, nil
}
