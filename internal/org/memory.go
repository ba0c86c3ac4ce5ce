package org

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskgrid.org/internal/ids"
)

// MemoryStore implements Store with in-process concurrency safety.
type MemoryStore struct {
	mu    sync.RWMutex
	orgs  map[string]*Organization
	order []string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory organization store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orgs: make(map[string]*Organization)}
}

func (s *MemoryStore) Create(ctx context.Context, o *Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = ids.New()
	}
	if _, ok := s.orgs[o.ID]; ok {
		return ErrConflict
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	cp := *o
	s.orgs[o.ID] = &cp
	s.order = append(s.order, o.ID)
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) FindByName(ctx context.Context, name string) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if strings.EqualFold(s.orgs[id].Name, name) {
			cp := *s.orgs[id]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Children(ctx context.Context, parentID string) ([]*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Organization
	for _, id := range s.order {
		if s.orgs[id].ParentID == parentID {
			cp := *s.orgs[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}
