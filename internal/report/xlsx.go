// Package report writes the finished validation report to an Excel
// workbook: a detail sheet with one line per issue and a summary sheet with
// per-category counts.
package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shopaudit/catalog-validator/internal/validate"
)

const (
	sheetIssues  = "Detailed Issues"
	sheetSummary = "Summary"
)

// DefaultPath returns the report path next to the input file, stamped with
// the run time.
func DefaultPath(inputPath string, now time.Time) string {
	name := fmt.Sprintf("validation_issues_%s.xlsx", now.Format("20060102_150405"))
	return filepath.Join(filepath.Dir(inputPath), name)
}

// Write writes the report workbook to path.
func Write(path string, rep *validate.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetIssues)
	if err := writeIssues(f, rep); err != nil {
		return err
	}
	if err := writeSummary(f, rep); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report to %s: %w", path, err)
	}
	return nil
}

func writeIssues(f *excelize.File, rep *validate.Report) error {
	header := []interface{}{"Variant SKU", "Category", "Message"}
	if err := f.SetSheetRow(sheetIssues, "A1", &header); err != nil {
		return err
	}

	for i, issue := range rep.Issues {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{issue.SKU, string(issue.Category), issue.Message}
		if err := f.SetSheetRow(sheetIssues, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, rep *validate.Report) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	header := []interface{}{"Category", "Count"}
	if err := f.SetSheetRow(sheetSummary, "A1", &header); err != nil {
		return err
	}

	summary := rep.Summary()
	line := 2
	for _, cat := range validate.Categories {
		count, ok := summary[cat]
		if !ok {
			continue
		}
		cell := fmt.Sprintf("A%d", line)
		row := []interface{}{string(cat), count}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return err
		}
		line++
	}

	totalCell := fmt.Sprintf("A%d", line)
	totalRow := []interface{}{"Total", rep.Total()}
	return f.SetSheetRow(sheetSummary, totalCell, &totalRow)
}
