package data

import (
	"context"
	"sync"

	"github.com/shopscout/shopscout-backend/internal/feedback/types"
)

// MemoryStore is the in-process event store. Events only ever get
// appended, so reads hand out copies of the slice header under a
// read lock.
type MemoryStore struct {
	mu      sync.RWMutex
	events  []*types.Event
	byItem  map[string][]*types.Event
	byQuery map[string][]*types.Event
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byItem:  make(map[string][]*types.Event),
		byQuery: make(map[string][]*types.Event),
	}
}

// Append stores one accepted event
func (s *MemoryStore) Append(_ context.Context, event *types.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	s.byItem[event.ItemID] = append(s.byItem[event.ItemID], event)
	s.byQuery[event.QueryID] = append(s.byQuery[event.QueryID], event)
	return nil
}

// All returns every stored event in append order
func (s *MemoryStore) All(_ context.Context) ([]*types.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// ByItem returns the events recorded for one item
func (s *MemoryStore) ByItem(_ context.Context, itemID string) ([]*types.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byItem[itemID]
	out := make([]*types.Event, len(events))
	copy(out, events)
	return out, nil
}

// ByQuery returns the events recorded for one query
func (s *MemoryStore) ByQuery(_ context.Context, queryID string) ([]*types.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byQuery[queryID]
	out := make([]*types.Event, len(events))
	copy(out, events)
	return out, nil
}
