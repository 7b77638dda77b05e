// Package database keeps a local SQLite ledger of upload attempts so
// operators can see what was sent to the tracking service and when.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
	path string
}

// Initialize opens the ledger at path and creates its tables. The
// parent directory must exist.
func Initialize(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_sync=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 10000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	// One CLI invocation at a time writes here
	db.SetMaxOpenConns(1)

	return &DB{
		DB:   db,
		path: path,
	}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		sample_id TEXT NOT NULL,
		sequencing_run_id TEXT,
		run_directory TEXT,
		action TEXT,
		status_code INTEGER,
		ok INTEGER NOT NULL DEFAULT 0,
		retryable INTEGER NOT NULL DEFAULT 0,
		qc TEXT,
		spike TEXT,
		contaminants INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		dry_run INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		uploaded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_sample ON uploads(sample_id);
	CREATE INDEX IF NOT EXISTS idx_uploads_time ON uploads(uploaded_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// RecordUpload inserts an upload attempt. ID and UploadedAt are filled
// in when empty.
func (db *DB) RecordUpload(u *Upload) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.UploadedAt.IsZero() {
		u.UploadedAt = time.Now()
	}
	u.UploadedAt = u.UploadedAt.UTC()

	query := `
		INSERT INTO uploads (
			id, sample_id, sequencing_run_id, run_directory, action, status_code,
			ok, retryable, qc, spike, contaminants, error, dry_run, duration_ms, uploaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.Exec(query,
		u.ID, u.SampleID, u.SequencingRunID, u.RunDirectory, u.Action, u.StatusCode,
		u.OK, u.Retryable, u.QC, u.Spike, u.Contaminants, u.Error, u.DryRun,
		u.Duration.Milliseconds(), u.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to record upload for %s: %w", u.SampleID, err)
	}
	return nil
}

// ListUploads returns upload attempts, newest first. An empty sampleID
// lists every sample; limit <= 0 means no limit.
func (db *DB) ListUploads(sampleID string, limit int) ([]Upload, error) {
	query := `
		SELECT id, sample_id, sequencing_run_id, run_directory, action, status_code,
			ok, retryable, qc, spike, contaminants, error, dry_run, duration_ms, uploaded_at
		FROM uploads`

	var args []interface{}
	if sampleID != "" {
		query += " WHERE sample_id = ?"
		args = append(args, sampleID)
	}
	query += " ORDER BY uploaded_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *u)
	}

	return uploads, rows.Err()
}

// LastUpload returns the most recent attempt for sampleID, or nil.
func (db *DB) LastUpload(sampleID string) (*Upload, error) {
	uploads, err := db.ListUploads(sampleID, 1)
	if err != nil || len(uploads) == 0 {
		return nil, err
	}
	return &uploads[0], nil
}

// ErrInvalidTableName is returned for a table the ledger does not have.
var ErrInvalidTableName = errors.New("invalid table name")

// ledgerTables are the tables CountTable may be asked about. Names are
// interpolated into SQL, so nothing else is accepted.
var ledgerTables = []string{"uploads"}

// CountTable returns the number of rows in one of the ledger tables,
// dry runs included.
func (db *DB) CountTable(table string) (int64, error) {
	known := false
	for _, t := range ledgerTables {
		known = known || t == table
	}
	if !known {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}

	var count int64
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// GetInfo returns database information
func (db *DB) GetInfo() (*DatabaseInfo, error) {
	info := &DatabaseInfo{Path: db.path}

	if stat, err := os.Stat(db.path); err == nil {
		info.Size = stat.Size()
	}

	err := db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT sample_id), COALESCE(SUM(ok), 0)
		FROM uploads WHERE dry_run = 0`).Scan(&info.Uploads, &info.Samples, &info.Succeeded)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger info: %w", err)
	}
	return info, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUpload(row rowScanner) (*Upload, error) {
	var u Upload
	var durationMS int64
	var runID, runDir, action, qc, spike, errMsg sql.NullString
	var status sql.NullInt64

	err := row.Scan(&u.ID, &u.SampleID, &runID, &runDir, &action, &status,
		&u.OK, &u.Retryable, &qc, &spike, &u.Contaminants, &errMsg, &u.DryRun,
		&durationMS, &u.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan upload: %w", err)
	}

	u.SequencingRunID = runID.String
	u.RunDirectory = runDir.String
	u.Action = action.String
	u.StatusCode = int(status.Int64)
	u.QC = qc.String
	u.Spike = spike.String
	u.Error = errMsg.String
	u.Duration = time.Duration(durationMS) * time.Millisecond
	return &u, nil
}
