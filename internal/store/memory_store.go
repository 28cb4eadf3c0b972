package store

import (
	"context"
	"sync"
)

// MemoryStorage keeps the snapshot in process memory. Used in tests and
// when the service runs without a persistence backend.
type MemoryStorage struct {
	mu       sync.Mutex
	snapshot *Snapshot
}

// NewMemoryStorage builds an empty in-memory Storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the held snapshot or ErrNoSnapshot.
func (s *MemoryStorage) Load(_ context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return s.snapshot, nil
}

// Save replaces the held snapshot.
func (s *MemoryStorage) Save(_ context.Context, snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
	return nil
}
