package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopaudit/catalog-validator/internal/catalog"
	"github.com/shopaudit/catalog-validator/internal/fetch"
	"github.com/shopaudit/catalog-validator/internal/parsers/csv"
	"github.com/shopaudit/catalog-validator/internal/parsers/xlsx"
	"github.com/shopaudit/catalog-validator/internal/report"
	"github.com/shopaudit/catalog-validator/internal/validate"
)

var (
	validateOutput  string
	validateFormat  string
	validateNoFetch bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a catalog export and write an issue report",
	Long: `Validate a catalog export (XLSX or CSV) against the pricing, inventory,
image, HTML, and variant ordering rules. Findings are written to an Excel
report with a detail sheet and a per-category summary sheet.

Image dimension checks fetch every referenced image; use --skip-fetch to run
only the offline checks.`,
	Example: `  catalog-validator validate ./catalog_export.xlsx
  catalog-validator validate ./catalog_export.csv --report ./issues.xlsx
  catalog-validator validate ./catalog_export.xlsx --output json --skip-fetch`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateOutput, "output", "table", "Output format: table or json")
	validateCmd.Flags().StringVar(&validateFormat, "report", "", "Report file path (default: validation_issues_<timestamp>.xlsx next to the input)")
	validateCmd.Flags().BoolVar(&validateNoFetch, "skip-fetch", false, "Skip image fetch and dimension checks")
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	logger.Info().Str("file", filePath).Msg("Reading file")
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	catalogOpts := catalog.Options{
		ImageColumn: cfg.Validation.ImageColumn,
		HTMLColumns: cfg.Validation.HTMLColumns,
	}

	var load *catalog.LoadResult
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		load, err = xlsx.NewParser(xlsx.Options{Catalog: catalogOpts}).Parse(content, filePath)
	case ".csv", ".txt":
		load, err = csv.NewParser(csv.Options{Catalog: catalogOpts}).Parse(content, filePath)
	default:
		return fmt.Errorf("unsupported file type %q, expected .xlsx or .csv", filepath.Ext(filePath))
	}
	if err != nil {
		return err
	}

	logger.Info().Int("rows", len(load.Rows)).Msg("Catalog loaded")

	engine := validate.NewEngine(validate.Options{
		Workers: cfg.Validation.Workers,
		Fetch: fetch.Config{
			Timeout:           cfg.Validation.FetchTimeout,
			RequestsPerSecond: cfg.Validation.RequestsPerSecond,
		},
		Image: validate.ImageOptions{
			RequiredWidth:  cfg.Validation.ImageWidth,
			RequiredHeight: cfg.Validation.ImageHeight,
			SkipFetch:      validateNoFetch,
		},
		Progress: func(sku string, processed, total int) {
			fmt.Fprintf(os.Stderr, "\rProcessing (%d/%d) SKU: %-30s", processed, total, sku)
		},
		Logger: *logger,
	})

	started := time.Now()
	rep, err := engine.Run(cmd.Context(), load)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("validation run failed: %w", err)
	}

	if validateOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printSummary(rep, time.Since(started))
	}

	if rep.Total() == 0 {
		logger.Info().Msg("No issues found")
		return nil
	}

	reportPath := validateFormat
	if reportPath == "" {
		reportPath = report.DefaultPath(filePath, started)
	}
	if err := report.Write(reportPath, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info().Str("report", reportPath).Int("issues", rep.Total()).Msg("Report written")

	return nil
}

func printSummary(rep *validate.Report, elapsed time.Duration) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tISSUES")

	summary := rep.Summary()
	for _, cat := range validate.Categories {
		if count, ok := summary[cat]; ok {
			fmt.Fprintf(w, "%s\t%d\n", cat, count)
		}
	}
	fmt.Fprintf(w, "Total\t%d\n", rep.Total())
	w.Flush()

	fmt.Printf("\nValidated %d rows in %s\n", rep.RowsProcessed, elapsed.Round(time.Millisecond))
}
