// Package resultdb is the results index: one row per finished run plus
// its purchase events, queryable for comparison and rendering. It stores
// outputs only; nothing in here ever feeds back into a live simulation.
package resultdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dasje/cookie-clicker-simulator/internal/persistence/runlog"
	"github.com/dasje/cookie-clicker-simulator/internal/report"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
)

type DB struct {
	conn *sqlx.DB
}

// Run is one row of the runs table.
type Run struct {
	RunID         string  `db:"run_id"`
	CreatedAt     string  `db:"created_at"`
	Strategy      string  `db:"strategy"`
	Horizon       float64 `db:"horizon"`
	BaseRate      float64 `db:"base_rate"`
	CatalogDigest string  `db:"catalog_digest"`
	HistoryDigest string  `db:"history_digest"`
	Elapsed       float64 `db:"elapsed"`
	Balance       float64 `db:"balance"`
	Total         float64 `db:"total"`
	Rate          float64 `db:"rate"`
	Purchases     int     `db:"purchases"`
	ArchivePath   string  `db:"archive_path"`
}

// RunFromRecord flattens an archive record into a runs row.
func RunFromRecord(rec runlog.Record, archivePath string) Run {
	return Run{
		RunID:         rec.Header.RunID,
		CreatedAt:     rec.Header.CreatedAt.UTC().Format(time.RFC3339Nano),
		Strategy:      rec.Header.Strategy,
		Horizon:       rec.Header.Horizon,
		BaseRate:      rec.Header.BaseRate,
		CatalogDigest: rec.Header.CatalogDigest,
		HistoryDigest: rec.Header.HistoryDigest,
		Elapsed:       rec.Header.Final.Elapsed,
		Balance:       rec.Header.Final.Balance,
		Total:         rec.Header.Final.Total,
		Rate:          rec.Header.Final.Rate,
		Purchases:     len(rec.Events) - 1,
		ArchivePath:   archivePath,
	}
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := initPragmas(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := initSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

func initPragmas(conn *sqlx.DB) error {
	// The driver ignores DSN-style pragma parameters, so they are applied
	// explicitly.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(conn *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			strategy TEXT NOT NULL,
			horizon REAL NOT NULL,
			base_rate REAL NOT NULL,
			catalog_digest TEXT NOT NULL,
			history_digest TEXT NOT NULL,
			elapsed REAL NOT NULL,
			balance REAL NOT NULL,
			total REAL NOT NULL,
			rate REAL NOT NULL,
			purchases INTEGER NOT NULL,
			archive_path TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs(strategy, created_at);`,
		`CREATE TABLE IF NOT EXISTS events (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			time REAL NOT NULL,
			item TEXT NOT NULL,
			cost REAL NOT NULL,
			total REAL NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := conn.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InsertRun stores the run row and its full event log in one transaction.
// The sentinel is kept as seq 0 so point queries start at the origin.
func (db *DB) InsertRun(run Run, events []engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(run_id, created_at, strategy, horizon, base_rate, catalog_digest,
		 history_digest, elapsed, balance, total, rate, purchases, archive_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.Strategy, run.Horizon, run.BaseRate,
		run.CatalogDigest, run.HistoryDigest, run.Elapsed, run.Balance,
		run.Total, run.Rate, run.Purchases, run.ArchivePath,
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO events
		(run_id, seq, time, item, cost, total) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for seq, ev := range events {
		if _, err := stmt.Exec(run.RunID, seq, ev.Time, ev.Item, ev.Cost, ev.Total); err != nil {
			return fmt.Errorf("insert event %d of run %s: %w", seq, run.RunID, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns every stored run, oldest first.
func (db *DB) ListRuns() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		`SELECT * FROM runs ORDER BY created_at, run_id`)
	return runs, err
}

func (db *DB) GetRun(runID string) (Run, error) {
	var run Run
	err := db.conn.Get(&run, `SELECT * FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return run, fmt.Errorf("run %s: %w", runID, err)
	}
	return run, nil
}

// Points returns the (time, total) trajectory of a stored run in event
// order.
func (db *DB) Points(runID string) ([]report.Point, error) {
	var pts []report.Point
	err := db.conn.Select(&pts,
		`SELECT time, total FROM events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("points of run %s: %w", runID, err)
	}
	return pts, nil
}
