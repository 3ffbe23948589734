package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a run id has no row.
var ErrNotFound = errors.New("journal: run not found")

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordRun(ctx context.Context, r RunRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, kind, created_at, seed, paths, steps, params,
		 var95, var99, cvar95, cvar99, max_loss, liquidation_prob)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Kind, r.CreatedAt.UTC(), r.Seed, r.Paths, r.Steps, r.Params,
		r.VaR95, r.VaR99, r.CVaR95, r.CVaR99, r.MaxLoss, r.LiquidationProb,
	)
	if err != nil {
		return fmt.Errorf("journal: record run %s: %w", r.RunID, err)
	}
	return nil
}

func (j *SQLiteJournal) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT run_id, kind, created_at, seed, paths, steps, params,
		       var95, var99, cvar95, cvar99, max_loss, liquidation_prob
		FROM runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	return r, err
}

// ListRuns returns the most recent runs, newest first. An empty kind
// matches all kinds; limit <= 0 means no limit.
func (j *SQLiteJournal) ListRuns(ctx context.Context, kind string, limit int) ([]RunRecord, error) {
	query := `
		SELECT run_id, kind, created_at, seed, paths, steps, params,
		       var95, var99, cvar95, cvar99, max_loss, liquidation_prob
		FROM runs`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, run_id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID, &r.Kind, &r.CreatedAt, &r.Seed, &r.Paths, &r.Steps, &r.Params,
		&r.VaR95, &r.VaR99, &r.CVaR95, &r.CVaR99, &r.MaxLoss, &r.LiquidationProb,
	)
	return r, err
}
