package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.StateStorage = (*StateStorage)(nil)

// TxBeginner abre transacciones (pool o conexión).
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// StateStorage tabla local_state: una fila por clave namespaced, payload en BYTEA.
// BYTEA y no JSONB para que un payload corrupto se pueda guardar y leer igual que en los otros backends.
type StateStorage struct {
	q     Querier
	tx    TxBeginner
	close func()
}

// NewStateStorage construye el adaptador sobre el pool.
func NewStateStorage(pool *pgxpool.Pool) *StateStorage {
	return &StateStorage{q: pool, tx: pool, close: pool.Close}
}

// EnsureSchema crea la tabla si no existe.
func (s *StateStorage) EnsureSchema(ctx context.Context) error {
	_, err := s.q.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS local_state (
			key        TEXT PRIMARY KEY,
			payload    BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create local_state: %w", err)
	}
	return nil
}

func (s *StateStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.q.QueryRow(ctx, `SELECT payload FROM local_state WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select local_state %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *StateStorage) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO local_state (key, payload, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		key, payload)
	if err != nil {
		return fmt.Errorf("upsert local_state %s: %w", key, err)
	}
	return nil
}

// DeleteAll borra las claves dentro de una transacción.
func (s *StateStorage) DeleteAll(ctx context.Context, keys ...string) error {
	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM local_state WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("delete local_state: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *StateStorage) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
