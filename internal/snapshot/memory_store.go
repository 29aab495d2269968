package snapshot

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	current *Snapshot
	version int64
}

// NewMemoryStore creates an in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Write(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	cp := *snap
	cp.Version = s.version
	cp.WrittenAt = time.Now().UTC().Format(time.RFC3339)
	s.current = &cp
	snap.Version = cp.Version
	snap.WrittenAt = cp.WrittenAt
	return nil
}

func (s *MemoryStore) Read(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoSnapshot
	}
	cp := *s.current
	return &cp, nil
}
