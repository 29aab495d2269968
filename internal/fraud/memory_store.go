package fraud

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
// Records keep batch order (first occurrence of each id).
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	byID    map[string]int
}

// NewMemoryStore creates an in-memory fraud record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (s *MemoryStore) ReplaceAll(ctx context.Context, records []Record) error {
	next := make([]Record, 0, len(records))
	byID := make(map[string]int, len(records))
	for _, r := range records {
		if i, seen := byID[r.TransactionID]; seen {
			next[i] = r // duplicate id within the batch: last write wins
			continue
		}
		byID[r.TransactionID] = len(next)
		next = append(next, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = next
	s.byID = byID
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, transactionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[transactionID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	r := s.records[i]
	return &r, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.byID = make(map[string]int)
	return nil
}
