package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskgrid.org/internal/audit"
	"taskgrid.org/internal/auth"
	"taskgrid.org/internal/obs"
)

const resourceKind = "Task"

// HierarchyResolver widens an organization id to its full descendant set.
// Only Owner-scope listing needs it.
type HierarchyResolver interface {
	DescendantIDs(ctx context.Context, rootID string) ([]string, error)
}

// Service decides, per actor, which tasks are visible and which operations
// are allowed, and records every access in the audit trail. It holds no state
// of its own between calls.
type Service struct {
	repo  Repository
	orgs  HierarchyResolver
	audit audit.Recorder
}

// NewService constructs the visibility service.
func NewService(repo Repository, orgs HierarchyResolver, recorder audit.Recorder) (*Service, error) {
	if repo == nil {
		return nil, errors.New("task repository is required")
	}
	if orgs == nil {
		return nil, errors.New("hierarchy resolver is required")
	}
	if recorder == nil {
		return nil, errors.New("audit recorder is required")
	}
	return &Service{repo: repo, orgs: orgs, audit: recorder}, nil
}

// List returns every task the actor is entitled to see: the whole subtree for
// an Owner, the actor's organization for an Admin, tasks assigned to them for
// a Viewer. One View entry is audited per returned task, in returned order.
func (s *Service) List(ctx context.Context, actor auth.Actor) ([]*Task, error) {
	var (
		tasks []*Task
		err   error
	)
	switch actor.Role {
	case auth.RoleOwner:
		var scope []string
		scope, err = s.orgs.DescendantIDs(ctx, actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		tasks, err = s.repo.ListByOrganizations(ctx, scope)
	case auth.RoleAdmin:
		tasks, err = s.repo.ListByOrganizations(ctx, []string{actor.OrganizationID})
	case auth.RoleViewer:
		tasks, err = s.repo.ListByOwner(ctx, actor.ID)
	default:
		return nil, denied(ReasonNoPermission)
	}
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		s.record(ctx, actor, ActionView, t.ID, "")
	}
	return tasks, nil
}

// Get fetches one task. A missing task and a denied actor are distinct
// outcomes: not-found is checked first.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (*Task, error) {
	t, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, *t, ActionView); !d.Allowed {
		return nil, denied(d.Reason)
	}
	s.record(ctx, actor, ActionView, t.ID, "")
	return t, nil
}

// CreateInput is a parsed, already-normalized create request.
type CreateInput struct {
	Title       string
	Description string
	Category    Category
	Status      Status
	OwnerID     string
}

// Create stores a new task for the actor's organization. The organization is
// always the actor's own, whatever the payload claimed; the assignee defaults
// to the actor.
func (s *Service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*Task, error) {
	if actor.Role == auth.RoleViewer {
		return nil, denied(ReasonViewerCreate)
	}
	if !actor.Role.Valid() {
		return nil, denied(ReasonNoPermission)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Category != CategoryWork && input.Category != CategoryPersonal {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	status := input.Status
	if status == "" {
		status = StatusTodo
	}
	owner := input.OwnerID
	if owner == "" {
		owner = actor.ID
	}

	t := &Task{
		Title:          title,
		Description:    input.Description,
		Status:         status,
		Category:       input.Category,
		OwnerID:        owner,
		OrganizationID: actor.OrganizationID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, actor, ActionCreate, t.ID, "Created task: "+t.Title)
	return t, nil
}

// UpdateInput is a partial patch; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *Category
	Status      *Status
	OwnerID     *string
}

// Update authorizes and applies a patch to one task.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, patch UpdateInput) (*Task, error) {
	t, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, *t, ActionUpdate); !d.Allowed {
		return nil, denied(d.Reason)
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.OwnerID != nil && *patch.OwnerID != "" {
		t.OwnerID = *patch.OwnerID
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, actor, ActionUpdate, t.ID, "Updated task: "+t.Title)
	return t, nil
}

// Delete authorizes and removes one task, returning its pre-deletion state so
// callers can report what was removed.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) (*Task, error) {
	t, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, *t, ActionDelete); !d.Allowed {
		return nil, denied(d.Reason)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.record(ctx, actor, ActionDelete, t.ID, "Deleted task: "+t.Title)
	return t, nil
}

// record appends an audit entry after a decision has been made. A failing
// audit write is reported through the log side channel and never aborts the
// business operation that produced it.
func (s *Service) record(ctx context.Context, actor auth.Actor, action Action, taskID, details string) {
	err := s.audit.Append(ctx, audit.Entry{
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     string(action),
		Resource:   resourceKind,
		ResourceID: taskID,
		Details:    details,
	})
	if err != nil {
		obs.LogRequest(map[string]any{
			"ts":          time.Now().UTC().Format(time.RFC3339Nano),
			"level":       "error",
			"msg":         "audit_append_failed",
			"action":      string(action),
			"resource_id": taskID,
			"error":       err.Error(),
		})
	}
}
