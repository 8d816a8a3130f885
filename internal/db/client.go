package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the pure Go "sqlite" database/sql driver.
	_ "github.com/glebarez/sqlite"

	"github.com/user00265/ctydatapi/internal/logging"
)

// DBClient defines the interface for our database operations.
type DBClient interface {
	// GetDB returns the raw *sql.DB instance.
	GetDB() *sql.DB
	// Close closes the database connection.
	Close() error
	// Init applies the schema statements the client was created with.
	Init() error
	// Ping checks the database connection.
	Ping(ctx context.Context) error
}

// SQLiteClient implements DBClient for SQLite databases.
type SQLiteClient struct {
	db       *sql.DB
	filePath string
	schema   []string
}

// NewSQLiteClient opens (creating if needed) the SQLite database dataDir/dbName.
// The schema statements are executed by Init, in order, inside one transaction.
func NewSQLiteClient(dataDir, dbName string, schema ...string) (*SQLiteClient, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory must be specified for SQLite database")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	dbPath := filepath.Join(dataDir, dbName)

	// The driver name for glebarez/sqlite is "sqlite" (not "sqlite3").
	connStr := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)", dbPath)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", dbPath, err)
	}

	// WAL is persistent in the database file, so setting it once covers every
	// pooled connection. This also creates the file on disk.
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL;").Scan(&mode); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", dbPath, err)
	}
	if mode != "wal" {
		logging.Warn("SQLite database %s is using journal mode %q instead of WAL", dbPath, mode)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLiteClient{
		db:       db,
		filePath: dbPath,
		schema:   schema,
	}, nil
}

// GetDB returns the raw *sql.DB instance.
func (s *SQLiteClient) GetDB() *sql.DB {
	return s.db
}

// Path returns the database file location.
func (s *SQLiteClient) Path() string {
	return s.filePath
}

// Close closes the database connection.
func (s *SQLiteClient) Close() error {
	return s.db.Close()
}

// Init creates the tables this client was configured with. It is safe to call
// repeatedly when the statements use IF NOT EXISTS.
func (s *SQLiteClient) Init() error {
	if len(s.schema) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range s.schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema to %s: %w", s.filePath, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteClient) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
