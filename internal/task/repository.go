package task

import "context"

// Repository is the persistence surface the visibility service depends on.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Find(ctx context.Context, id string) (*Task, error)
	ListByOrganizations(ctx context.Context, orgIDs []string) ([]*Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
