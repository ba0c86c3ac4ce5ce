package audit

import (
	"context"
	"time"
)

// Entry is an immutable record of one authorized action.
type Entry struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    string    `json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	Details    string    `json:"details,omitempty"`
}

// Recorder is an append-only store of audit entries. Append failures must
// never abort the business operation that produced the entry; callers report
// them through a side channel and move on.
type Recorder interface {
	Append(ctx context.Context, entry Entry) error
	All(ctx context.Context) ([]Entry, error)
	ByActor(ctx context.Context, actorID string) ([]Entry, error)
	ByResource(ctx context.Context, resourceID string) ([]Entry, error)
}
