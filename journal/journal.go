// journal/journal.go
package journal

import (
	"context"
	"time"
)

// RunRecord is one simulation run's summary row.
type RunRecord struct {
	RunID     string
	Kind      string // "montecarlo", "cascade" or "stress"
	CreatedAt time.Time
	Seed      int64
	Paths     int
	Steps     int
	Params    string // JSON blob of the run configuration

	VaR95           float64
	VaR99           float64
	CVaR95          float64
	CVaR99          float64
	MaxLoss         float64
	LiquidationProb float64
}

type Journal interface {
	RecordRun(context.Context, RunRecord) error
	GetRun(ctx context.Context, runID string) (RunRecord, error)
	ListRuns(ctx context.Context, kind string, limit int) ([]RunRecord, error)
	Close() error
}

// Nop discards every record. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordRun(context.Context, RunRecord) error { return nil }

func (Nop) GetRun(context.Context, string) (RunRecord, error) {
	return RunRecord{}, ErrNotFound
}

func (Nop) ListRuns(context.Context, string, int) ([]RunRecord, error) {
	return nil, nil
}

func (Nop) Close() error { return nil }
