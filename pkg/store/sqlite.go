// Package store is the persistent relational store of spec.md §4.1: typed
// CRUD plus filtered listing for every case-workflow entity. Schema
// migration is additive-only (CREATE IF NOT EXISTS, ALTER) and runs once
// at startup; it never blocks on data seeding.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/autocomply/casework/pkg/domain"
)

// Config configures the primary SQLite-backed store.
type Config struct {
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	WALMode      bool
	BusyTimeout  time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:         "data/casework.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// Store is the primary relational store backing submissions, cases,
// evidence, case events, and attachment metadata.
type Store struct {
	db     *sql.DB
	config *Config
	mu     sync.RWMutex
	logger *slog.Logger
}

// New opens (creating if absent) the SQLite database at config.Path,
// applies the schema, and verifies the schema version.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, domain.Internal("open store database", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &Store{db: db, config: config, logger: logger}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return domain.Internal("enable wal mode", err)
		}
	}

	busyMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyMs)); err != nil {
		return domain.Internal("set busy timeout", err)
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return domain.Internal("enable foreign keys", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return domain.Internal("create schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return domain.Internal("insert schema version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return domain.Internal("read schema version", err)
	}
	if version != SchemaVersion {
		return domain.Internal("schema version mismatch",
			fmt.Errorf("expected %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return domain.Internal("close store", err)
	}
	return nil
}

// DB exposes the underlying handle for packages (audit, intelligence)
// that need read-only cross-table queries outside this package's typed
// API. Callers must not assume any particular driver beyond database/sql.
func (s *Store) DB() *sql.DB {
	return s.db
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error — the mechanism behind every multi-table mutation
// spec.md §4.1 requires to commit atomically (case update + event
// emission, attachment removal + event emission, intelligence write +
// event emission).
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Internal("begin transaction", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.Internal("commit transaction", err)
	}
	return nil
}

// wrapErr maps a raw database/sql error to the domain error taxonomy
// (spec.md §7): sql.ErrNoRows becomes NotFound, a unique-constraint
// violation becomes Conflict, everything else becomes Internal.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return domain.NotFound(op + ": not found")
	}
	if isUniqueConstraintErr(err) {
		return domain.Conflict(op + ": duplicate key")
	}
	return domain.Internal(op, err)
}

// isUniqueConstraintErr matches the mattn/go-sqlite3 driver's error text
// for a UNIQUE / PRIMARY KEY constraint violation. The driver exposes a
// typed sqlite3.Error with an ExtendedCode, but matching on the message
// keeps this store independent of importing the driver's error type
// directly in call sites that only have a generic error.
func isUniqueConstraintErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
