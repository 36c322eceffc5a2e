package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linkguard/internal/model"
)

// HistoryDB provides SQLite-based storage for recorded runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database file at dbPath.
// If CreateIfNotExists is true, the parent directory and database file are
// created. Otherwise a missing file yields ErrDatabaseNotFound.
func Open(dbPath string, opts Options) (*HistoryDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per recorded check; seq orders runs by insertion
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		root TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		passed INTEGER NOT NULL,
		digest TEXT NOT NULL,
		documents INTEGER NOT NULL,
		reference_count INTEGER NOT NULL,
		violations TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one recorded check.
type Run struct {
	ID         string
	Root       string
	Timestamp  time.Time
	Passed     bool
	Digest     string
	Documents  int
	References int
	// Violations are the report lines in report order.
	Violations []string
}

// NewRun creates a Run for a finished report with a fresh random id.
func NewRun(report *model.Report, at time.Time) *Run {
	return &Run{
		ID:         uuid.NewString(),
		Root:       report.Root,
		Timestamp:  at.UTC(),
		Passed:     report.Passed(),
		Digest:     report.Digest,
		Documents:  report.Documents,
		References: report.References,
		Violations: report.Lines(),
	}
}

// SaveRun stores a run.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *Run) error {
	violations := run.Violations
	if violations == nil {
		violations = []string{}
	}
	violationsJSON, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("failed to serialize violations: %w", err)
	}

	query := `
	INSERT INTO runs (id, root, timestamp, passed, digest, documents, reference_count, violations)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := hdb.db.ExecContext(ctx, query,
		run.ID,
		run.Root,
		run.Timestamp.UTC().Format(time.RFC3339Nano),
		run.Passed,
		run.Digest,
		run.Documents,
		run.References,
		string(violationsJSON),
	); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const selectRuns = `
	SELECT id, root, timestamp, passed, digest, documents, reference_count, violations
	FROM runs
`

// GetRun returns the run with the given id.
func (hdb *HistoryDB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := hdb.db.QueryRowContext(ctx, selectRuns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. An empty root lists the
// runs of every root; limit <= 0 means no limit.
func (hdb *HistoryDB) ListRuns(ctx context.Context, root string, limit int) ([]*Run, error) {
	query := selectRuns
	var args []any
	if root != "" {
		query += " WHERE root = ?"
		args = append(args, root)
	}
	query += " ORDER BY seq DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DiffLatest compares the two most recent runs of root.
func (hdb *HistoryDB) DiffLatest(ctx context.Context, root string) (*RunDiff, error) {
	runs, err := hdb.ListRuns(ctx, root, 2)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, ErrNotEnoughRuns
	}
	return Diff(runs[1], runs[0]), nil
}

// RunDiff lists what changed between two runs.
type RunDiff struct {
	Older *Run
	Newer *Run
	// Introduced are violations present only in Newer, sorted.
	Introduced []string
	// Resolved are violations present only in Older, sorted.
	Resolved []string
}

// Diff compares two runs.
func Diff(older, newer *Run) *RunDiff {
	before := make(map[string]struct{}, len(older.Violations))
	for _, v := range older.Violations {
		before[v] = struct{}{}
	}
	after := make(map[string]struct{}, len(newer.Violations))
	for _, v := range newer.Violations {
		after[v] = struct{}{}
	}

	d := &RunDiff{Older: older, Newer: newer}
	for v := range after {
		if _, ok := before[v]; !ok {
			d.Introduced = append(d.Introduced, v)
		}
	}
	for v := range before {
		if _, ok := after[v]; !ok {
			d.Resolved = append(d.Resolved, v)
		}
	}
	sort.Strings(d.Introduced)
	sort.Strings(d.Resolved)
	return d
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var timestamp, violationsJSON string
	if err := row.Scan(
		&run.ID,
		&run.Root,
		&timestamp,
		&run.Passed,
		&run.Digest,
		&run.Documents,
		&run.References,
		&violationsJSON,
	); err != nil {
		return nil, err
	}
	run.Timestamp = parseTimestamp(timestamp)
	if err := json.Unmarshal([]byte(violationsJSON), &run.Violations); err != nil {
		return nil, fmt.Errorf("failed to deserialize violations: %w", err)
	}
	return &run, nil
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
