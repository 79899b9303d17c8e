package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process EntityStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, kind, id string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[kind][id]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryStore) Apply(_ context.Context, writes []EntityWrite) error {
	if err := Validate(writes); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range writes {
		bucket, ok := s.data[w.Kind]
		if !ok {
			bucket = make(map[string][]byte)
			s.data[w.Kind] = bucket
		}
		v := make([]byte, len(w.Data))
		copy(v, w.Data)
		bucket[w.ID] = v
	}
	return nil
}

// IDs lists the ids stored under kind in sorted order.
func (s *MemoryStore) IDs(kind string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data[kind]))
	for id := range s.data[kind] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
