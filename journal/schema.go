// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	seed INTEGER NOT NULL,
	paths INTEGER NOT NULL,
	steps INTEGER NOT NULL,
	params TEXT NOT NULL,
	var95 REAL NOT NULL,
	var99 REAL NOT NULL,
	cvar95 REAL NOT NULL,
	cvar99 REAL NOT NULL,
	max_loss REAL NOT NULL,
	liquidation_prob REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`
