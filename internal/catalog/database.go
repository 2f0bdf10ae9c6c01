// Package catalog is the persistence layer for base paths and file records.
//
// Every operation funnels through a safe wrapper: a storage error is logged,
// escalates database health to fully degraded on the shared ServiceState,
// and comes back as an error value. Nothing below this boundary panics past
// it, so the scan loop keeps running when the store breaks.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"image-catalog/internal/health"
	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// degradedReason is the reason string attached to the health state when a
// statement fails.
const degradedReason = "Fatal SQL failure"

// ErrBasePathExists is returned by AddBasePath when the path is already
// registered. It is an application-level outcome, not a storage fault, so
// it never degrades health.
var ErrBasePathExists = fmt.Errorf("base path already exists")

// Database wraps all catalog reads and writes.
type Database struct {
	db    *sql.DB
	path  string
	state *health.ServiceState

	// One logical operation at a time. Handlers invoked from the bus call
	// back in here; each call acquires and releases the lock on its own,
	// so no re-entrancy is ever needed.
	mu sync.Mutex
}

// Schema is the catalog DDL. Shared with cmd/catalog-tool.
const Schema = `
	CREATE TABLE IF NOT EXISTS base_path (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS file_entry (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_path_id INTEGER NOT NULL,
		subdir TEXT NOT NULL,
		filename TEXT NOT NULL,
		hash TEXT NOT NULL,
		last_modified INTEGER NOT NULL,
		FOREIGN KEY (base_path_id) REFERENCES base_path(id),
		UNIQUE(base_path_id, subdir, filename)
	);

	CREATE INDEX IF NOT EXISTS idx_file_entry_directory
		ON file_entry(base_path_id, subdir);
`

// New opens (or creates) the catalog database at dbPath and ensures the
// schema exists. Storage errors from the returned Database's operations are
// reported through state rather than raised.
func New(ctx context.Context, dbPath string, state *health.ServiceState) (*Database, error) {
	logging.Info("Catalog database path: %s", dbPath)

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info("Catalog database initialized at %s", dbPath)

	return &Database{
		db:    db,
		path:  dbPath,
		state: state,
	}, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// GetBasePaths returns all registered base paths.
func (d *Database) GetBasePaths() ([]BasePathEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT id, path FROM base_path")
	if err != nil {
		return nil, d.fail("get_base_paths", "Unable to get all base paths", start, err)
	}
	defer rows.Close()

	var paths []BasePathEntry
	for rows.Next() {
		var entry BasePathEntry
		if err := rows.Scan(&entry.ID, &entry.Path); err != nil {
			return nil, d.fail("get_base_paths", "Unable to scan base path row", start, err)
		}
		paths = append(paths, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, d.fail("get_base_paths", "Unable to iterate base paths", start, err)
	}

	recordQuery("get_base_paths", start, nil)
	return paths, nil
}

// GetFileRecordsForDirectory returns every file record under one
// (base path, subdirectory) pair. One call per scanned directory bounds the
// round-trips to one query per directory instead of one per file.
func (d *Database) GetFileRecordsForDirectory(basePathID int64, subdir string) ([]FileRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, base_path_id, subdir, filename, hash, last_modified
		 FROM file_entry
		 WHERE base_path_id = ? AND subdir = ?`,
		basePathID, subdir,
	)
	if err != nil {
		return nil, d.fail("get_file_records", "Unable to get file entries for directory", start, err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.ID, &rec.BasePathID, &rec.Subdir, &rec.Filename, &rec.Hash, &rec.LastModified); err != nil {
			return nil, d.fail("get_file_records", "Unable to scan file entry row", start, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, d.fail("get_file_records", "Unable to iterate file entries", start, err)
	}

	recordQuery("get_file_records", start, nil)
	return records, nil
}

// AddFileRecord inserts a new file record and returns its row id. The
// insert is an upsert: two queued "add" events for the same file must both
// be safe to apply.
func (d *Database) AddFileRecord(basePathID int64, subdir, filename, hash string, lastModified int64) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		`INSERT INTO file_entry(base_path_id, subdir, filename, hash, last_modified)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(base_path_id, subdir, filename) DO UPDATE SET
			hash = excluded.hash,
			last_modified = excluded.last_modified`,
		basePathID, subdir, filename, hash, lastModified,
	)
	if err != nil {
		return 0, d.fail("add_file_record", "Unable to add new file entry", start, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, d.fail("add_file_record", "Unable to read inserted file entry id", start, err)
	}

	recordQuery("add_file_record", start, nil)
	return id, nil
}

// UpdateFileRecord replaces the hash and mtime of an existing file record.
func (d *Database) UpdateFileRecord(basePathID int64, subdir, filename, hash string, lastModified int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx,
		`UPDATE file_entry SET hash = ?, last_modified = ?
		 WHERE base_path_id = ? AND subdir = ? AND filename = ?`,
		hash, lastModified, basePathID, subdir, filename,
	)
	if err != nil {
		return d.fail("update_file_record", "Unable to update file entry", start, err)
	}

	recordQuery("update_file_record", start, nil)
	return nil
}

// AddBasePath registers a new base path and returns its row id. Existence
// is checked first; the UNIQUE constraint still catches a concurrent
// duplicate insert.
func (d *Database) AddBasePath(path string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var existing int64
	err := d.db.QueryRowContext(ctx, "SELECT id FROM base_path WHERE path = ?", path).Scan(&existing)
	switch {
	case err == nil:
		recordQuery("add_base_path", start, nil)
		return 0, fmt.Errorf("%w: %s", ErrBasePathExists, path)
	case err != sql.ErrNoRows:
		return 0, d.fail("add_base_path", "Unable to check if base path exists", start, err)
	}

	result, err := d.db.ExecContext(ctx, "INSERT INTO base_path(path) VALUES(?)", path)
	if err != nil {
		return 0, d.fail("add_base_path", "Unable to add new base path", start, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, d.fail("add_base_path", "Unable to read inserted base path id", start, err)
	}

	recordQuery("add_base_path", start, nil)
	return id, nil
}

// fail is the single escalation point for storage errors: log, degrade
// database health, and hand the error back as a value.
func (d *Database) fail(operation, message string, start time.Time, err error) error {
	recordQuery(operation, start, err)
	logging.Error("%s, reason: %v", message, err)

	d.state.SetDatabaseHealth(health.FullyDegraded, degradedReason)
	metrics.DBDegraded.Set(float64(health.FullyDegraded))

	return fmt.Errorf("%s: %w", message, err)
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
