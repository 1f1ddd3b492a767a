// Package history records suite runs in SQLite so that regressions and
// flaky tests can be spotted across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/chocotest/internal/models"
)

// RunRecord is one recorded suite run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Total      int
	Passed     int
	Executable string
}

// Failed returns the number of failing cases in the run.
func (r RunRecord) Failed() int {
	return r.Total - r.Passed
}

// CaseRecord is one case verdict within a run.
type CaseRecord struct {
	RunID        string
	Source       string
	Mode         string
	Outcome      models.Outcome
	Kind         models.FailureKind
	FailureIndex int
	Duration     time.Duration
}

// FlakyCase is a source that both passed and failed within the window.
type FlakyCase struct {
	Source string
	Passes int
	Fails  int
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return openAndInitStore(dbPath)
}

func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" is a fresh database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a suite summary and all of its verdicts atomically.
func (s *Store) RecordRun(ctx context.Context, summary models.SuiteSummary, executable string) error {
	if summary.RunID == "" {
		return fmt.Errorf("record run: summary has no run ID")
	}

	startedAt := summary.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_ms, total, passed, executable) VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, startedAt.UTC(), summary.Duration.Milliseconds(), summary.Total, summary.Passed, executable)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO case_results (run_id, source, mode, outcome, kind, failure_index, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare case insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range summary.Verdicts {
		failureIndex := v.FailureIndex
		if v.Kind == models.KindDirectiveMismatch || v.Kind == models.KindDirectiveExhausted {
			failureIndex = v.DirectiveIndex
		}
		if _, err := stmt.ExecContext(ctx, summary.RunID, v.Case.Source, v.Case.Mode.String(),
			string(v.Outcome), string(v.Kind), failureIndex, v.Duration.Milliseconds()); err != nil {
			return fmt.Errorf("insert case result %s: %w", v.Case.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first. limit <= 0 returns all.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, total, passed, executable FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var durationMs int64
		var executable sql.NullString
		if err := rows.Scan(&r.ID, &r.StartedAt, &durationMs, &r.Total, &r.Passed, &executable); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Executable = executable.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// CaseResults returns the verdicts recorded for one run in case order.
func (s *Store) CaseResults(ctx context.Context, runID string) ([]CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, mode, outcome, kind, failure_index, duration_ms
		FROM case_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query case results: %w", err)
	}
	defer rows.Close()

	var records []CaseRecord
	for rows.Next() {
		var c CaseRecord
		var outcome string
		var kind sql.NullString
		var durationMs int64
		if err := rows.Scan(&c.RunID, &c.Source, &c.Mode, &outcome, &kind, &c.FailureIndex, &durationMs); err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		c.Outcome = models.Outcome(outcome)
		c.Kind = models.FailureKind(kind.String)
		c.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case rows: %w", err)
	}
	return records, nil
}

// FlakyCases returns sources that both passed and failed within the last
// window runs (window <= 0 considers every retained run), most failures first.
func (s *Store) FlakyCases(ctx context.Context, window int) ([]FlakyCase, error) {
	if window <= 0 {
		window = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source,
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END) AS passes,
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END) AS fails
		FROM case_results
		WHERE run_id IN (SELECT id FROM runs ORDER BY rowid DESC LIMIT ?)
		GROUP BY source
		HAVING passes > 0 AND fails > 0
		ORDER BY fails DESC, source`,
		string(models.OutcomePass), string(models.OutcomeFail), window)
	if err != nil {
		return nil, fmt.Errorf("query flaky cases: %w", err)
	}
	defer rows.Close()

	var flaky []FlakyCase
	for rows.Next() {
		var f FlakyCase
		if err := rows.Scan(&f.Source, &f.Passes, &f.Fails); err != nil {
			return nil, fmt.Errorf("scan flaky row: %w", err)
		}
		flaky = append(flaky, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flaky rows: %w", err)
	}
	return flaky, nil
}

// Prune keeps the most recent keep runs and deletes the rest along with
// their case results. keep <= 0 keeps everything. Returns the number of
// runs removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	const retained = `SELECT id FROM runs ORDER BY rowid DESC LIMIT ?`
	if _, err := tx.ExecContext(ctx, `DELETE FROM case_results WHERE run_id NOT IN (`+retained+`)`, keep); err != nil {
		return 0, fmt.Errorf("prune case results: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id NOT IN (`+retained+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}
