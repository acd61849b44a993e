package memstore

import (
	"context"
	"sync"
)

// Store is a process-local SnapshotStore. The CLI uses it for dry runs,
// tests use it as a fake.
type Store struct {
	mu    sync.Mutex
	docs  map[string][]byte
	saves map[string]int
	fail  error
}

func New() *Store {
	return &Store{
		docs:  make(map[string][]byte),
		saves: make(map[string]int),
	}
}

// Seed returns a store pre-filled with the given documents.
func Seed(docs map[string][]byte) *Store {
	s := New()
	for k, v := range docs {
		s.docs[k] = append([]byte(nil), v...)
	}
	return s
}

func (s *Store) Load(ctx context.Context, dataset string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[dataset]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Save(ctx context.Context, dataset string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.docs[dataset] = append([]byte(nil), data...)
	s.saves[dataset]++
	return nil
}

// Saves reports how many successful writes a dataset received.
func (s *Store) Saves(dataset string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[dataset]
}

// SetFailure makes every following Save return err until it is reset with nil.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}
