package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// New creates and initializes a new SQLite database connection.
func New(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// migrate creates the necessary tables if they don't exist.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cameras (
		serial_number TEXT PRIMARY KEY,
		group_id INTEGER,
		sub_group INTEGER,
		ip TEXT
	);

	CREATE TABLE IF NOT EXISTS triggers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME,
		label INTEGER,
		part_instance TEXT,
		belt TEXT,
		part TEXT
	);

	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trigger_id INTEGER REFERENCES triggers(id),
		width INTEGER,
		height INTEGER,
		camera_id TEXT NOT NULL REFERENCES cameras(serial_number),
		media_id TEXT,
		path TEXT,
		ether_checked BOOLEAN
	);

	CREATE TABLE IF NOT EXISTS defects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		image_id INTEGER NOT NULL REFERENCES images(id) ON DELETE CASCADE,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		confidence REAL,
		type TEXT,
		hand TEXT,
		uss_reviewed BOOLEAN,
		system_generated BOOLEAN,
		disposition TEXT,
		dispositioned_at DATETIME,
		mode TEXT,
		metadata TEXT
	);

	CREATE TABLE IF NOT EXISTS part_information (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model TEXT,
		part_name TEXT,
		part_number TEXT,
		packout_amount INTEGER,
		length REAL,
		job_num TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS regions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		camera_id TEXT NOT NULL REFERENCES cameras(serial_number),
		region_id TEXT NOT NULL,
		size_threshold REAL NOT NULL,
		density_threshold INTEGER NOT NULL,
		proximity_threshold REAL NOT NULL,
		polygon TEXT NOT NULL DEFAULT '[]',
		part_number TEXT REFERENCES part_information(job_num),
		active BOOLEAN NOT NULL DEFAULT 1,
		description TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (camera_id, region_id)
	);

	CREATE INDEX IF NOT EXISTS idx_images_camera ON images(camera_id);
	CREATE INDEX IF NOT EXISTS idx_images_trigger ON images(trigger_id);
	CREATE INDEX IF NOT EXISTS idx_defects_image_id ON defects(image_id);
	CREATE INDEX IF NOT EXISTS idx_regions_camera ON regions(camera_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
