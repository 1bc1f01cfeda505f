package memstore

import (
	"sync"
)

// MemoryStore is a non-durable Persistence used by tests and as a fallback
// when no durable medium is available. Reopening is simulated by handing the
// same MemoryStore to freshly constructed stores.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	saves  map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		saves:  make(map[string]int),
	}
}

func (s *MemoryStore) Load(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Save(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	s.saves[key]++
	return nil
}

// Saves returns how many times key has been written.
func (s *MemoryStore) Saves(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves[key]
}

func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

func (s *MemoryStore) Close() error {
	return nil
}
