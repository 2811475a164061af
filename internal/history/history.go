// Package history keeps a SQLite journal of conversion outcomes, the
// persistent replacement for the original tool's in-panel log.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/texforge/texforge/internal/pipeline"
)

// Journal is a connection to the conversion history database.
type Journal struct {
	db   *sql.DB
	path string
}

// JournalOptions configures journal creation and connection behavior
type JournalOptions struct {
	// Path to the SQLite database file
	Path string

	// WALMode enables Write-Ahead Logging mode for better concurrency
	WALMode bool

	// BusyTimeout sets the timeout for locked database operations
	BusyTimeout time.Duration
}

// DefaultJournalOptions returns sensible default options for journal connections
func DefaultJournalOptions(path string) *JournalOptions {
	return &JournalOptions{
		Path:        path,
		WALMode:     true,
		BusyTimeout: 30 * time.Second,
	}
}

// Entry is one recorded outcome.
type Entry struct {
	ID        int64
	File      string
	Format    string
	Status    string
	Message   string
	CreatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file TEXT NOT NULL,
	format TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at);
`

// Open creates a new journal connection with the given options, creating the
// database file and schema when absent.
func Open(options *JournalOptions) (*Journal, error) {
	if options == nil {
		return nil, fmt.Errorf("journal options cannot be nil")
	}
	if options.Path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}

	if err := ensureDirectory(options.Path); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", buildConnectionString(options))
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", options.Path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("testing journal connection: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return &Journal{db: db, path: options.Path}, nil
}

// Close closes the journal connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	if err != nil {
		return fmt.Errorf("closing journal connection: %w", err)
	}
	return nil
}

// Record appends one outcome to the journal. Satisfies pipeline.Recorder.
func (j *Journal) Record(ctx context.Context, o pipeline.Outcome) error {
	if j.db == nil {
		return fmt.Errorf("journal connection is closed")
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO conversions (file, format, status, message) VALUES (?, ?, ?, ?)`,
		o.Path, o.Format.String(), string(o.Status), o.Message)
	if err != nil {
		return fmt.Errorf("recording outcome for %s: %w", o.Path, err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j.db == nil {
		return nil, fmt.Errorf("journal connection is closed")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, file, format, status, message, created_at
		 FROM conversions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.File, &e.Format, &e.Status, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func buildConnectionString(options *JournalOptions) string {
	connStr := options.Path + "?"
	if options.WALMode {
		connStr += "_journal_mode=WAL&"
	}
	if options.BusyTimeout > 0 {
		connStr += fmt.Sprintf("_busy_timeout=%d&", options.BusyTimeout.Milliseconds())
	}
	return connStr + "_foreign_keys=on"
}

func ensureDirectory(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
