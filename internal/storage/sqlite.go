package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/stacklok/crate-sync/internal/crates"
)

//go:embed migrations/000001_init.up.sql
var initMigrationUp string

const upsertCrateSQL = `
INSERT INTO crates (key, kind, list, org, name, version, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    kind = excluded.kind,
    list = excluded.list,
    org = excluded.org,
    name = excluded.name,
    version = excluded.version,
    updated_at = excluded.updated_at`

const listCratesSQL = `
SELECT key, kind, list, org, name, version, updated_at
FROM crates
WHERE ? = '' OR list = ?
ORDER BY key`

// SQLite stores crates in a SQLite database
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens or creates a SQLite database at path and applies the schema
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't handle multiple writers well
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(initMigrationUp); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// UpsertCrates writes every crate in a single transaction
func (s *SQLite) UpsertCrates(ctx context.Context, list string, records []crates.Crate) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertCrateSQL)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	now := s.now().UTC()
	for _, c := range records {
		stored, err := toStored(list, c, now)
		if err != nil {
			return err
		}

		if _, err := stmt.ExecContext(ctx, stored.Key, stored.Kind, stored.List,
			stored.Org, stored.Name, stored.Version, stored.UpdatedAt.UnixNano()); err != nil {
			return fmt.Errorf("storing crate %s: %w", stored.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListCrates returns crates ordered by key
func (s *SQLite) ListCrates(ctx context.Context, list string) ([]StoredCrate, error) {
	rows, err := s.db.QueryContext(ctx, listCratesSQL, list, list)
	if err != nil {
		return nil, fmt.Errorf("querying crates: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []StoredCrate
	for rows.Next() {
		var stored StoredCrate
		var updatedAt int64
		if err := rows.Scan(&stored.Key, &stored.Kind, &stored.List,
			&stored.Org, &stored.Name, &stored.Version, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning crate: %w", err)
		}
		stored.UpdatedAt = time.Unix(0, updatedAt).UTC()
		result = append(result, stored)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating crates: %w", err)
	}
	return result, nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}
