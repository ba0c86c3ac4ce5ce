package task

import (
	"context"
	"sync"
	"time"

	"taskgrid.org/internal/ids"
)

// MemoryRepository implements Repository with in-process concurrency safety.
// Listing order is insertion order, matching what a sequential scan yields.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks []*Task
	index map[string]int
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory task repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{index: make(map[string]int)}
}

func (r *MemoryRepository) Create(ctx context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	r.index[t.ID] = len(r.tasks)
	r.tasks = append(r.tasks, &cp)
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, id string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r.tasks[i]
	return &cp, nil
}

func (r *MemoryRepository) ListByOrganizations(ctx context.Context, orgIDs []string) ([]*Task, error) {
	member := make(map[string]struct{}, len(orgIDs))
	for _, id := range orgIDs {
		member[id] = struct{}{}
	}
	return r.list(func(t *Task) bool {
		_, ok := member[t.OrganizationID]
		return ok
	}), nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Task, error) {
	return r.list(func(t *Task) bool { return t.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) Update(ctx context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt = r.tasks[i].CreatedAt
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	r.tasks[i] = &cp
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return ErrNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.tasks); j++ {
		r.index[r.tasks[j].ID] = j
	}
	return nil
}

func (r *MemoryRepository) list(keep func(*Task) bool) []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Task
	for _, t := range r.tasks {
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}
