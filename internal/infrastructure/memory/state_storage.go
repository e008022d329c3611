// Package memory almacenamiento de estado en memoria del proceso (tests y perfiles efímeros).
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var _ repository.StateStorage = (*StateStorage)(nil)

// StateStorage mapa protegido por mutex; guarda copias de los payloads.
type StateStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStateStorage crea un almacenamiento vacío.
func NewStateStorage() *StateStorage {
	return &StateStorage{data: map[string][]byte{}}
}

func (s *StateStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(payload), true, nil
}

func (s *StateStorage) Put(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = bytes.Clone(payload)
	return nil
}

func (s *StateStorage) DeleteAll(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *StateStorage) Close() error { return nil }
