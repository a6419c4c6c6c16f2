package store

import "sync"

// Store is durable key/value byte storage surviving restarts.
// Operations are synchronous and last-writer-wins; a failed medium write is
// absorbed by the implementation, so callers treat Set as infallible and the
// in-process state stays authoritative for the process lifetime.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Close() error
}

// MemoryStore is a Store backed only by a map. It is the degraded mode when
// the database cannot be opened, and the fixture for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), value...), true
}

func (s *MemoryStore) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
}

func (s *MemoryStore) Close() error {
	return nil
}
