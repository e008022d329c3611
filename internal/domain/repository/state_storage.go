package repository

import "context"

// StateStorage almacenamiento clave/valor de bytes debajo del RecordStore (memory, sqlite, postgres).
// Get devuelve (nil, false, nil) si la clave no existe.
type StateStorage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
	// DeleteAll borra las claves en una sola transacción; las inexistentes se ignoran.
	DeleteAll(ctx context.Context, keys ...string) error
	Close() error
}
