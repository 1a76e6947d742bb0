package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/reactome/doi-suggester/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Indexes on Pathway_2_hasEvent.hasEvent and Event_2_inferredFrom.inferredFrom
const currentSchemaVersion = 1

// Supported database/sql driver names.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// DefaultMySQLConns bounds the MySQL pool when Config.MaxOpenConns is unset.
const DefaultMySQLConns = 16

// ErrReadOnly is returned by write methods on a MySQL store.
var ErrReadOnly = errors.New("store is read-only")

// Config selects and tunes a database.
type Config struct {
	// Driver is DriverMySQL or DriverSQLite.
	Driver string

	// DSN is a go-sql-driver/mysql DSN or a SQLite file path.
	DSN string

	// MaxOpenConns bounds the pool. Zero uses 1 for SQLite and
	// DefaultMySQLConns for MySQL.
	MaxOpenConns int
}

// Store is one release snapshot. It implements engine.Snapshot and is safe
// for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database described by cfg.
//
// SQLite databases are configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// and get the embedded schema applied, which is idempotent. MySQL databases
// are used as they are.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", engine.ErrSnapshotUnavailable, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", engine.ErrSnapshotUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect to database: %v", engine.ErrSnapshotUnavailable, err)
	}

	conns := cfg.MaxOpenConns
	if conns <= 0 {
		conns = DefaultMySQLConns
		if cfg.Driver == DriverSQLite {
			// SQLite only supports one writer at a time
			conns = 1
		}
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)

	if cfg.Driver == DriverSQLite {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: apply pragmas: %v", engine.ErrSnapshotUnavailable, err)
		}
		if err := applySchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: apply schema: %v", engine.ErrSnapshotUnavailable, err)
		}
	}

	return &Store{db: db, driver: cfg.Driver}, nil
}

// OpenSQLite opens or creates a SQLite snapshot file.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	return Open(ctx, Config{Driver: DriverSQLite, DSN: path})
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
