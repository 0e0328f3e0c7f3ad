package credstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and examples. Several
// MemoryStore handles can share one record via [NewSharedMemoryStore] to
// model sibling contexts over shared storage.
type MemoryStore struct {
	state *memoryState
}

type memoryState struct {
	mu  sync.Mutex
	rec Record
	set bool
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{}}
}

// NewSharedMemoryStore returns a second handle over the same record.
func NewSharedMemoryStore(other *MemoryStore) *MemoryStore {
	return &MemoryStore{state: other.state}
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.rec = rec
	s.state.set = true
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) (Record, bool, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.set {
		return Record{}, false, nil
	}
	return s.state.rec, true, nil
}

func (s *MemoryStore) UpdateRefreshToken(ctx context.Context, refreshToken string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.set {
		return nil
	}
	s.state.rec.RefreshToken = refreshToken
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.rec = Record{}
	s.state.set = false
	return nil
}

var _ Store = (*MemoryStore)(nil)
