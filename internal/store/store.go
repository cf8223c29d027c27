package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/valpere/argobridge/internal/capability"
	"github.com/valpere/argobridge/internal/installer"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS install_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		installed INTEGER NOT NULL DEFAULT 0,
		not_found INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	);

	-- install_results stores the per-pair outcome of each run
	CREATE TABLE IF NOT EXISTS install_results (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		from_lang TEXT NOT NULL,
		to_lang TEXT NOT NULL,
		status TEXT NOT NULL,
		detail TEXT,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES install_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_install_results_pair ON install_results(from_lang, to_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveInstallRun records one installer run and all of its pair results in a
// single transaction.
func (s *Store) SaveInstallRun(ctx context.Context, report *installer.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO install_runs (id, started_at, finished_at, installed, not_found, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		report.RunID, report.StartedAt, report.FinishedAt,
		report.Count(installer.StatusInstalled),
		report.Count(installer.StatusNotFound),
		report.Count(installer.StatusError))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", report.RunID, err)
	}

	for i, r := range report.Results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO install_results (run_id, seq, from_lang, to_lang, status, detail) VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID, i, r.Pair.From, r.Pair.To, string(r.Status), r.Detail)
		if err != nil {
			return fmt.Errorf("failed to save result %s->%s: %w", r.Pair.From, r.Pair.To, err)
		}
	}

	return tx.Commit()
}

// InstallRun is a stored run summary.
type InstallRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Installed  int
	NotFound   int
	Failed     int
}

// ListInstallRuns returns the most recent runs first. A limit <= 0 returns all.
func (s *Store) ListInstallRuns(ctx context.Context, limit int) ([]InstallRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, installed, not_found, failed FROM install_runs ORDER BY started_at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []InstallRun
	for rows.Next() {
		var r InstallRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Installed, &r.NotFound, &r.Failed); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// InstallResults returns the pair results of one run in installation order.
func (s *Store) InstallResults(ctx context.Context, runID string) ([]installer.PairResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT from_lang, to_lang, status, COALESCE(detail, '') FROM install_results WHERE run_id = ? ORDER BY seq`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []installer.PairResult
	for rows.Next() {
		var (
			r      installer.PairResult
			status string
		)
		if err := rows.Scan(&r.Pair.From, &r.Pair.To, &status, &r.Detail); err != nil {
			return nil, err
		}
		r.Status = installer.Status(status)
		results = append(results, r)
	}

	return results, rows.Err()
}

// LastInstalled returns every pair whose most recent recorded outcome is
// installed.
func (s *Store) LastInstalled(ctx context.Context) ([]capability.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.from_lang, r.to_lang
		FROM install_results r
		JOIN install_runs u ON u.id = r.run_id
		WHERE r.status = ?
		AND u.started_at = (
			SELECT MAX(u2.started_at)
			FROM install_results r2
			JOIN install_runs u2 ON u2.id = r2.run_id
			WHERE r2.from_lang = r.from_lang AND r2.to_lang = r.to_lang
		)
		GROUP BY r.from_lang, r.to_lang
		ORDER BY r.from_lang, r.to_lang`,
		string(installer.StatusInstalled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []capability.Edge
	for rows.Next() {
		var e capability.Edge
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, err
		}
		pairs = append(pairs, e)
	}

	return pairs, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
