// Package sqlite almacenamiento de estado en un archivo SQLite (driver puro Go, sin cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // driver "sqlite"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.StateStorage = (*StateStorage)(nil)

// StateStorage una fila por clave en la tabla state; el payload se guarda tal cual.
type StateStorage struct {
	db *sql.DB
}

// Open abre (o crea) el archivo y la tabla state.
func Open(ctx context.Context, path string) (*StateStorage, error) {
	if path == "" {
		path = "trazabilidad.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// un único escritor; evita SQLITE_BUSY entre conexiones del pool
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &StateStorage{db: db}, nil
}

func (s *StateStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select state %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *StateStorage) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state(key, payload) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`,
		key, payload)
	if err != nil {
		return fmt.Errorf("upsert state %s: %w", key, err)
	}
	return nil
}

func (s *StateStorage) DeleteAll(ctx context.Context, keys ...string) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM state WHERE key = ?`, k); err != nil {
			return fmt.Errorf("delete state %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *StateStorage) Close() error { return s.db.Close() }
