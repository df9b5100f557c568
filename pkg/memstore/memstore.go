// Package memstore is a scoped key-value store with SQLite
// persistence. Scopes follow the agent memory scopes (user, project,
// local, session); keys are upserted, so Set always wins.
package memstore

import (
	"context"
	"database/sql"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
)

const memoryTable = "proteus_memory"

// Store persists scoped key-value pairs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path and ensures the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "open memory store", err).
			WithContext("path", path)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, errors.New(errors.CodeStoreError, "ensure memory schema", err).
			WithContext("path", path)
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + memoryTable + ` (
			scope TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY(scope, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_` + memoryTable + `_scope ON ` + memoryTable + `(scope);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Set upserts one value.
func (s *Store) Set(ctx context.Context, scope extension.MemoryScope, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+memoryTable+` (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(scope), key, value, time.Now().UnixMilli())
	if err != nil {
		return errors.New(errors.CodeStoreError, "set memory value", err).
			WithContext("scope", string(scope)).WithContext("key", key)
	}
	return nil
}

// Get returns the value for scope/key. A missing key is CodeNotFound.
func (s *Store) Get(ctx context.Context, scope extension.MemoryScope, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM `+memoryTable+` WHERE scope = ? AND key = ?`,
		string(scope), key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", errors.New(errors.CodeNotFound, "memory key not found", nil).
			WithContext("scope", string(scope)).WithContext("key", key)
	}
	if err != nil {
		return "", errors.New(errors.CodeStoreError, "get memory value", err).
			WithContext("scope", string(scope)).WithContext("key", key)
	}
	return value, nil
}

// Delete removes one key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, scope extension.MemoryScope, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+memoryTable+` WHERE scope = ? AND key = ?`,
		string(scope), key)
	if err != nil {
		return errors.New(errors.CodeStoreError, "delete memory value", err).
			WithContext("scope", string(scope)).WithContext("key", key)
	}
	return nil
}

// List returns every key in a scope, sorted.
func (s *Store) List(ctx context.Context, scope extension.MemoryScope) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM `+memoryTable+` WHERE scope = ?`, string(scope))
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "list memory keys", err).
			WithContext("scope", string(scope))
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.New(errors.CodeStoreError, "scan memory key", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.CodeStoreError, "iterate memory keys", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
