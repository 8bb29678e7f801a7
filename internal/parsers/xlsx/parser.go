// Package xlsx loads catalog exports from Excel workbooks.
package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

// Parser reads an Excel catalog export into rows.
type Parser struct {
	options Options
}

// Options controls workbook parsing.
type Options struct {
	// Sheet selects the worksheet by name. Empty selects the first sheet.
	Sheet string
	// Catalog controls column mapping.
	Catalog catalog.Options
}

// NewParser creates an XLSX parser.
func NewParser(options Options) *Parser {
	return &Parser{options: options}
}

// Parse reads workbook content. The first row is the header; a missing
// required column or an empty sheet surfaces as *catalog.SchemaError.
func (p *Parser) Parse(content []byte, filename string) (*catalog.LoadResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := p.selectSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil, &catalog.SchemaError{Empty: true}
	}

	headers := rows[0]
	records := rows[1:]

	result, err := catalog.FromRecords(headers, records, p.options.Catalog)
	if err != nil {
		return nil, err
	}
	result.Filename = filename
	return result, nil
}

func (p *Parser) selectSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if p.options.Sheet == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == p.options.Sheet {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found. Available sheets: %s",
		p.options.Sheet, strings.Join(sheets, ", "))
}
