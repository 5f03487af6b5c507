// Package history persists run summaries in SQLite for trend reporting.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mj1618/stepwright/internal/model"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL,
	report      TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cases (
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	case_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, case_id)
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at);
`

// ErrNotFound is returned when a run is not in the store.
var ErrNotFound = errors.New("run not found")

// Store provides SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path. ":memory:" gives a
// private in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores summary and its case outcomes. Recording the same run again
// replaces it.
func (s *Store) Record(ctx context.Context, summary *model.RunSummary, reportPath string) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"cases", "runs"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, summary.RunID); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, total, passed, failed, duration_ns, report, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.StartedAt.UnixNano(),
		summary.Total,
		summary.Passed,
		summary.Failed,
		int64(summary.Duration),
		reportPath,
		string(payload),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, c := range summary.Cases {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cases (run_id, case_id, name, status, duration_ns, error)
			VALUES (?, ?, ?, ?, ?, ?)`,
			summary.RunID, c.ID, c.Name, string(c.Status), int64(c.Duration), c.Error,
		); err != nil {
			return fmt.Errorf("insert case %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]model.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, total, passed, failed, duration_ns, report
		FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.RunRecord{}
	for rows.Next() {
		var r model.RunRecord
		var started, duration int64
		if err := rows.Scan(&r.RunID, &started, &r.Total, &r.Passed, &r.Failed, &duration, &r.Report); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, started)
		r.Duration = time.Duration(duration)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Trend returns up to n runs, oldest first, for charting.
func (s *Store) Trend(ctx context.Context, n int) ([]model.RunRecord, error) {
	records, err := s.Recent(ctx, n)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Get returns the full summary of a stored run.
func (s *Store) Get(ctx context.Context, runID string) (*model.RunSummary, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT summary FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	var summary model.RunSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &summary, nil
}

// CaseStat is the pass/fail history of one case across stored runs.
type CaseStat struct {
	CaseID string `yaml:"case_id" json:"case_id"`
	Name   string `yaml:"name"    json:"name"`
	Runs   int    `yaml:"runs"    json:"runs"`
	Failed int    `yaml:"failed"  json:"failed"`
}

// FlakyCases returns cases that both passed and failed across stored runs,
// most failures first.
func (s *Store) FlakyCases(ctx context.Context) ([]CaseStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT case_id, MAX(name), COUNT(*), SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) AS failed
		FROM cases GROUP BY case_id
		HAVING failed > 0 AND failed < COUNT(*)
		ORDER BY failed DESC, case_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []CaseStat{}
	for rows.Next() {
		var st CaseStat
		if err := rows.Scan(&st.CaseID, &st.Name, &st.Runs, &st.Failed); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
