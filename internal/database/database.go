package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sqlx.DB. All counting uses wall-clock day boundaries in the
// configured time zone, never UTC.
type DB struct {
	*sqlx.DB
	loc *time.Location
}

// New creates a new database connection
func New(path string, loc *time.Location) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Connect with WAL mode and foreign keys enabled
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db, loc: loc}, nil
}

// today returns the current date as YYYY-MM-DD in the configured zone.
func (db *DB) today() string {
	return time.Now().In(db.loc).Format(time.DateOnly)
}

// timestamp returns the current time as YYYY-MM-DD HH:MM:SS in the
// configured zone. Stored as text so age comparisons stay lexicographic.
func (db *DB) timestamp() string {
	return time.Now().In(db.loc).Format(time.DateTime)
}
