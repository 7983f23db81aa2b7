package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"subdub/internal/config"
)

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the jobs database and applies migrations.
// An advisory file lock serializes migrations across concurrent invocations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.JobsDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}

	lock := flock.New(filepath.Join(cfg.Paths.JobsDir, "jobs.lock"))
	if err := lock.Lock(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("acquire jobs lock: %w", err)
	}
	migrateErr := store.applyMigrations(context.Background())
	if unlockErr := lock.Unlock(); unlockErr != nil && migrateErr == nil {
		migrateErr = fmt.Errorf("release jobs lock: %w", unlockErr)
	}
	if migrateErr != nil {
		_ = db.Close()
		return nil, migrateErr
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const runColumns = `id, run_id, subtitle_path, voice_ref, output_path, strategy, engine,
    status, entry_count, warning_count, failed_entries, duration_seconds,
    peak_scale, error_message, created_at, updated_at`

// RecordStart inserts a running record for a new dubbing invocation.
func (s *Store) RecordStart(ctx context.Context, run Run) (*Run, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO dub_runs (
            run_id, subtitle_path, voice_ref, output_path, strategy, engine,
            status, peak_scale, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.SubtitlePath,
		nullableString(run.VoiceRef),
		run.OutputPath,
		run.Strategy,
		run.Engine,
		StatusRunning,
		1.0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Complete marks a run finished and folds in its summary numbers.
func (s *Store) Complete(ctx context.Context, runID string, summary Summary) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE dub_runs SET status = ?, entry_count = ?, warning_count = ?,
            failed_entries = ?, duration_seconds = ?, peak_scale = ?,
            updated_at = ? WHERE run_id = ?`,
		StatusCompleted,
		summary.EntryCount,
		summary.WarningCount,
		summary.FailedCount,
		summary.DurationSeconds,
		summary.PeakScale,
		timestamp,
		runID,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// Fail marks a run failed with its error message.
func (s *Store) Fail(ctx context.Context, runID, message string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE dub_runs SET status = ?, error_message = ?, updated_at = ? WHERE run_id = ?`,
		StatusFailed,
		nullableString(message),
		timestamp,
		runID,
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// GetByID fetches a run by database identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM dub_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// GetByRunID fetches a run by its public identifier.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM dub_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM dub_runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		voiceRef  sql.NullString
		errMsg    sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&run.ID,
		&run.RunID,
		&run.SubtitlePath,
		&voiceRef,
		&run.OutputPath,
		&run.Strategy,
		&run.Engine,
		&run.Status,
		&run.EntryCount,
		&run.WarningCount,
		&run.FailedCount,
		&run.DurationSeconds,
		&run.PeakScale,
		&errMsg,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	run.VoiceRef = voiceRef.String
	run.ErrorMessage = errMsg.String
	run.CreatedAt = parseTimestamp(createdAt)
	run.UpdatedAt = parseTimestamp(updatedAt)
	return &run, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
