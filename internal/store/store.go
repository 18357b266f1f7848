// Package store persists reference datasets in SQLite via modernc.org/sqlite.
//
// Imports open a database writable and migrate it; loads open it ReadOnly
// and never change the file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Migration is one schema step. Up runs inside a transaction.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Option configures New.
type Option func(*options)

type options struct {
	readOnly bool
}

// ReadOnly opens the database with query_only set. Migrate and Tx writes
// fail on such a store.
func ReadOnly() Option {
	return func(o *options) { o.readOnly = true }
}

// SQLiteStore holds one dataset database and tracks which schema versions
// have been applied to it.
type SQLiteStore struct {
	db       *sql.DB
	readOnly bool
	mu       sync.Mutex // Serialize migrations
	once     sync.Once  // Ensure _migrations table created once
}

// New opens (or creates) the dataset database at path. Writable stores run
// in WAL mode; read-only stores set query_only instead.
func New(path string, opts ...Option) (*SQLiteStore, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// One connection keeps pragmas and :memory: databases consistent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// modernc.org/sqlite requires SQL statements, not DSN params.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	if o.readOnly {
		pragmas = append(pragmas, "PRAGMA query_only=ON")
	} else {
		pragmas = append(pragmas,
			"PRAGMA journal_mode=WAL",
			"PRAGMA synchronous=NORMAL",
		)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	return &SQLiteStore{db: db, readOnly: o.readOnly}, nil
}

// DB returns the underlying *sql.DB for direct queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Tx runs fn in a transaction, committing on nil and rolling back otherwise.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

// Migrate applies the migrations of schema that are not yet recorded, in
// slice order. Each step commits together with its _migrations row.
func (s *SQLiteStore) Migrate(ctx context.Context, schema string, migrations []Migration) error {
	if s.readOnly {
		return fmt.Errorf("migrate %s: store is read-only", schema)
	}
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range migrations {
		applied, err := s.isMigrationApplied(ctx, schema, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := s.applyMigration(ctx, schema, m); err != nil {
			return fmt.Errorf("migration %s/%d (%s): %w", schema, m.Version, m.Description, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version of schema, or
// 0 when the database has never been migrated. It does not write, so it is
// safe on read-only stores.
func (s *SQLiteStore) SchemaVersion(ctx context.Context, schema string) (int, error) {
	var tables int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = '_migrations'",
	).Scan(&tables)
	if err != nil {
		return 0, fmt.Errorf("lookup _migrations: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM _migrations WHERE schema_name = ?", schema,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("schema version %s: %w", schema, err)
	}
	return version, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureMigrationsTable(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		_, err = s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS _migrations (
				schema_name TEXT    NOT NULL,
				version     INTEGER NOT NULL,
				description TEXT    NOT NULL,
				applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (schema_name, version)
			)
		`)
	})
	return err
}

func (s *SQLiteStore) isMigrationApplied(ctx context.Context, schema string, version int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM _migrations WHERE schema_name = ? AND version = ?",
		schema, version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration %s/%d: %w", schema, version, err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) applyMigration(ctx context.Context, schema string, m Migration) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if err := m.Up(tx); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO _migrations (schema_name, version, description) VALUES (?, ?, ?)",
			schema, m.Version, m.Description,
		)
		return err
	})
}
