package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shopaudit/catalog-validator/internal/validate"
)

// Run is one persisted validation run.
type Run struct {
	ID         int64      `json:"id"`
	Filename   string     `json:"filename"`
	RowCount   int        `json:"rowCount"`
	IssueCount int        `json:"issueCount"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// SaveReport stores a finished run and its issues. Issues are bulk-loaded
// with COPY since a messy export can produce thousands of findings.
func SaveReport(ctx context.Context, filename string, startedAt time.Time, rep *validate.Report) (int64, error) {
	p := Pool()
	if p == nil {
		return 0, fmt.Errorf("database not connected")
	}

	tx, err := p.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO validation_runs (filename, row_count, issue_count, status, started_at, finished_at)
		VALUES ($1, $2, $3, 'completed', $4, NOW())
		RETURNING id
	`, filename, rep.RowsProcessed, rep.Total(), startedAt).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("error inserting run: %w", err)
	}

	if len(rep.Issues) > 0 {
		rows := make([][]interface{}, len(rep.Issues))
		for i, issue := range rep.Issues {
			rows[i] = []interface{}{runID, issue.SKU, string(issue.Category), string(issue.Code), issue.Message}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"validation_issues"},
			[]string{"run_id", "sku", "category", "code", "message"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return 0, fmt.Errorf("error inserting issues: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func ListRuns(ctx context.Context, limit int) ([]Run, error) {
	p := Pool()
	if p == nil {
		return nil, fmt.Errorf("database not connected")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := p.Query(ctx, `
		SELECT id, filename, row_count, issue_count, status, started_at, finished_at
		FROM validation_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Filename, &r.RowCount, &r.IssueCount, &r.Status, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run and its issues.
func GetRun(ctx context.Context, runID int64) (*Run, []validate.Issue, error) {
	p := Pool()
	if p == nil {
		return nil, nil, fmt.Errorf("database not connected")
	}

	var r Run
	err := p.QueryRow(ctx, `
		SELECT id, filename, row_count, issue_count, status, started_at, finished_at
		FROM validation_runs
		WHERE id = $1
	`, runID).Scan(&r.ID, &r.Filename, &r.RowCount, &r.IssueCount, &r.Status, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("run %d not found", runID)
		}
		return nil, nil, err
	}

	rows, err := p.Query(ctx, `
		SELECT sku, category, code, message
		FROM validation_issues
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	issues := make([]validate.Issue, 0)
	for rows.Next() {
		var issue validate.Issue
		var category, code string
		if err := rows.Scan(&issue.SKU, &category, &code, &issue.Message); err != nil {
			return nil, nil, err
		}
		issue.Category = validate.Category(category)
		issue.Code = validate.Code(code)
		issues = append(issues, issue)
	}
	return &r, issues, rows.Err()
}
