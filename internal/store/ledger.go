package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// RunStatus is the lifecycle state of a harvest run.
type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"
	RunStatusComplete    RunStatus = "complete"
	RunStatusInterrupted RunStatus = "interrupted"
	RunStatusFailed      RunStatus = "failed"
)

// Run is one row of the run ledger.
type Run struct {
	ID           string    `json:"id"`
	AuctionURL   string    `json:"auction_url"`
	AuctionTitle string    `json:"auction_title"`
	AuctionDate  string    `json:"auction_date"`
	Status       RunStatus `json:"status"`
	LotsTotal    int       `json:"lots_total"`
	LotsOK       int       `json:"lots_ok"`
	LotsFailed   int       `json:"lots_failed"`
	CSVPath      string    `json:"csv_path"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RunLedger records one row per pipeline run in sqlite, so past harvests can
// be listed without walking output directories.
type RunLedger struct {
	db *sql.DB
}

// OpenLedger opens the ledger database at path and configures WAL mode.
func OpenLedger(path string) (*RunLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "ledger: exec %s", pragma)
		}
	}
	return &RunLedger{db: db}, nil
}

const ledgerMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	auction_url   TEXT NOT NULL,
	auction_title TEXT NOT NULL DEFAULT '',
	auction_date  TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'running',
	lots_total    INTEGER NOT NULL DEFAULT 0,
	lots_ok       INTEGER NOT NULL DEFAULT 0,
	lots_failed   INTEGER NOT NULL DEFAULT 0,
	csv_path      TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

// Migrate creates the ledger schema.
func (l *RunLedger) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, ledgerMigration)
	return eris.Wrap(err, "ledger: migrate")
}

// Close closes the underlying database.
func (l *RunLedger) Close() error {
	return l.db.Close()
}

// CreateRun inserts a new running row and returns it.
func (l *RunLedger) CreateRun(ctx context.Context, auctionURL, title, date, csvPath string) (*Run, error) {
	run := &Run{
		ID:           uuid.New().String(),
		AuctionURL:   auctionURL,
		AuctionTitle: title,
		AuctionDate:  date,
		Status:       RunStatusRunning,
		CSVPath:      csvPath,
		CreatedAt:    time.Now().UTC(),
	}
	run.UpdatedAt = run.CreatedAt

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, auction_url, auction_title, auction_date, status, csv_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.AuctionURL, run.AuctionTitle, run.AuctionDate, string(run.Status), run.CSVPath,
		run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: insert run")
	}
	return run, nil
}

// CompleteRun finalizes a run with its terminal status and counters.
func (l *RunLedger) CompleteRun(ctx context.Context, runID string, status RunStatus, total, ok, failed int) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, lots_total = ?, lots_ok = ?, lots_failed = ?, updated_at = ? WHERE id = ?`,
		string(status), total, ok, failed, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "ledger: complete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "ledger: rows affected")
	}
	if n == 0 {
		return eris.Errorf("ledger: run %s not found", runID)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means 50.
func (l *RunLedger) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, auction_url, auction_title, auction_date, status, lots_total, lots_ok, lots_failed, csv_path, created_at, updated_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: list runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var status string
		if err := rows.Scan(&r.ID, &r.AuctionURL, &r.AuctionTitle, &r.AuctionDate, &status,
			&r.LotsTotal, &r.LotsOK, &r.LotsFailed, &r.CSVPath, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "ledger: scan run")
		}
		r.Status = RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "ledger: iterate runs")
}
