package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/techtally/internal/model"
)

// FileName is the database file name inside the data directory.
const FileName = "techtally.db"

// HistoryDB stores techtally runs in SQLite.
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

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run 'techtally count' first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
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
	-- One row per count, alone or at the end of a full run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		source TEXT,
		total INTEGER NOT NULL DEFAULT 0,
		bucket_count INTEGER NOT NULL DEFAULT 0,
		counts_json TEXT,
		stages_json TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Per-URL outcomes of the fetching stages of a run
	CREATE TABLE IF NOT EXISTS fetch_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		stage TEXT NOT NULL,
		url TEXT NOT NULL,
		status_code INTEGER,
		outcome TEXT NOT NULL,
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_fetch_outcomes_run ON fetch_outcomes(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata contains summary information about a stored run.
// This is used for listing history without loading the counts.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64 `json:"id"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`

	// Source is the bucket file that was counted.
	Source string `json:"source,omitempty"`

	// Total is the total number of mentions.
	Total int `json:"total"`

	// BucketCount is the number of buckets counted.
	BucketCount int `json:"bucket_count"`
}

// RunRecord is a stored run with its database ID.
type RunRecord struct {
	ID  int64      `json:"id"`
	Run *model.Run `json:"run"`
}

// SaveRun stores a run and its fetch outcomes in one transaction and
// returns the new run ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	var (
		source      string
		total       int
		bucketCount int
		countsJSON  []byte
	)
	if run.Counts != nil {
		source = run.Counts.Source
		total = run.Counts.Total
		bucketCount = len(run.Counts.Entries)

		var err error
		countsJSON, err = json.Marshal(run.Counts)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize counts: %w", err)
		}
	}
	stagesJSON, err := json.Marshal(run.Stages)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize stages: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (timestamp, source, total, bucket_count, counts_json, stages_json, error)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		source,
		total,
		bucketCount,
		nullableString(countsJSON),
		string(stagesJSON),
		run.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, f := range run.Fetches {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO fetch_outcomes (run_id, stage, url, status_code, outcome, message)
		VALUES (?, ?, ?, ?, ?, ?)
		`, id, f.Stage, f.URL, f.StatusCode, string(f.Outcome), f.Message); err != nil {
			return 0, fmt.Errorf("failed to save fetch outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns metadata for all runs, newest first.
func (hdb *HistoryDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	query := `
	SELECT id, timestamp, source, total, bucket_count
	FROM runs
	ORDER BY id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string
		var source sql.NullString

		if err := rows.Scan(&meta.ID, &timestamp, &source, &meta.Total, &meta.BucketCount); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		meta.Source = source.String

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves a run by ID, including its fetch outcomes.
// It returns nil without error when no run has that ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	query := `
	SELECT id, timestamp, counts_json, stages_json, error
	FROM runs
	WHERE id = ?
	`

	record, err := scanRun(hdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	fetches, err := hdb.GetFetchOutcomes(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Run.Fetches = fetches

	return record, nil
}

// GetLatestRuns returns up to n runs that have counts, newest first.
// Fetch outcomes are not loaded.
func (hdb *HistoryDB) GetLatestRuns(ctx context.Context, n int) ([]*RunRecord, error) {
	query := `
	SELECT id, timestamp, counts_json, stages_json, error
	FROM runs
	WHERE counts_json IS NOT NULL
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := hdb.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetFetchOutcomes returns the per-URL outcomes of a run in insertion order.
func (hdb *HistoryDB) GetFetchOutcomes(ctx context.Context, runID int64) ([]model.FetchOutcome, error) {
	query := `
	SELECT stage, url, status_code, outcome, message
	FROM fetch_outcomes
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := make([]model.FetchOutcome, 0)
	for rows.Next() {
		var f model.FetchOutcome
		var status sql.NullInt64
		var outcome string
		var message sql.NullString

		if err := rows.Scan(&f.Stage, &f.URL, &status, &outcome, &message); err != nil {
			return nil, fmt.Errorf("failed to scan fetch outcome: %w", err)
		}
		f.StatusCode = int(status.Int64)
		f.Outcome = model.Outcome(outcome)
		f.Message = message.String

		outcomes = append(outcomes, f)
	}

	return outcomes, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		id         int64
		timestamp  string
		countsJSON sql.NullString
		stagesJSON sql.NullString
		errMessage sql.NullString
	)
	if err := row.Scan(&id, &timestamp, &countsJSON, &stagesJSON, &errMessage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := &model.Run{
		StartedAt:    parseTimestamp(timestamp),
		Stages:       make([]model.StageResult, 0),
		Fetches:      make([]model.FetchOutcome, 0),
		ErrorMessage: errMessage.String,
	}
	if countsJSON.Valid && countsJSON.String != "" {
		var counts model.CountReport
		if err := json.Unmarshal([]byte(countsJSON.String), &counts); err != nil {
			return nil, fmt.Errorf("failed to parse counts of run %d: %w", id, err)
		}
		run.Counts = &counts
	}
	if stagesJSON.Valid && stagesJSON.String != "" {
		if err := json.Unmarshal([]byte(stagesJSON.String), &run.Stages); err != nil {
			return nil, fmt.Errorf("failed to parse stages of run %d: %w", id, err)
		}
	}

	return &RunRecord{ID: id, Run: run}, nil
}

// nullableString stores empty JSON as NULL so that count-less runs can be
// filtered out with IS NOT NULL.
func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format written by SaveRun
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
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
