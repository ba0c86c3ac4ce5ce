package task

import (
	"context"
	"errors"
	"testing"

	"taskgrid.org/internal/audit"
	"taskgrid.org/internal/auth"
	"taskgrid.org/internal/org"
)

type fixture struct {
	svc    *Service
	repo   *MemoryRepository
	log    *audit.Log
	owner  auth.Actor
	admin  auth.Actor
	viewer auth.Actor
}

// newFixture builds a two-level organization tree with one actor per role:
// the Owner at the root, an Admin and a Viewer in the child org "team-a".
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	orgs := org.NewMemoryStore()
	for _, o := range []*org.Organization{
		{ID: "root", Name: "Acme"},
		{ID: "team-a", Name: "Acme Team A", ParentID: "root"},
		{ID: "team-b", Name: "Acme Team B", ParentID: "root"},
	} {
		if err := orgs.Create(ctx, o); err != nil {
			t.Fatalf("create org %s: %v", o.ID, err)
		}
	}

	repo := NewMemoryRepository()
	log := audit.NewLog()
	svc, err := NewService(repo, org.NewHierarchyResolver(orgs), log)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{
		svc:    svc,
		repo:   repo,
		log:    log,
		owner:  auth.Actor{ID: "o1", Email: "owner@acme.test", Role: auth.RoleOwner, OrganizationID: "root"},
		admin:  auth.Actor{ID: "a1", Email: "admin@acme.test", Role: auth.RoleAdmin, OrganizationID: "team-a"},
		viewer: auth.Actor{ID: "v1", Email: "viewer@acme.test", Role: auth.RoleViewer, OrganizationID: "team-a"},
	}
}

func (f *fixture) seed(t *testing.T, tk *Task) *Task {
	t.Helper()
	if err := f.repo.Create(context.Background(), tk); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return tk
}

func TestListScopesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, &Task{ID: "t-root", Title: "Plan quarter", Category: CategoryWork, Status: StatusTodo, OwnerID: "o1", OrganizationID: "root"})
	f.seed(t, &Task{ID: "t-a1", Title: "Review PRs", Category: CategoryWork, Status: StatusTodo, OwnerID: "a1", OrganizationID: "team-a"})
	f.seed(t, &Task{ID: "t-v1", Title: "Write notes", Category: CategoryWork, Status: StatusTodo, OwnerID: "v1", OrganizationID: "team-a"})
	f.seed(t, &Task{ID: "t-b", Title: "Ship release", Category: CategoryWork, Status: StatusTodo, OwnerID: "b1", OrganizationID: "team-b"})

	wantIDs := func(tasks []*Task, want ...string) {
		t.Helper()
		if len(tasks) != len(want) {
			t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
		}
		for i, id := range want {
			if tasks[i].ID != id {
				t.Fatalf("tasks[%d] = %s, want %s", i, tasks[i].ID, id)
			}
		}
	}

	ownerTasks, err := f.svc.List(ctx, f.owner)
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	wantIDs(ownerTasks, "t-root", "t-a1", "t-v1", "t-b")

	adminTasks, err := f.svc.List(ctx, f.admin)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	wantIDs(adminTasks, "t-a1", "t-v1")

	viewerTasks, err := f.svc.List(ctx, f.viewer)
	if err != nil {
		t.Fatalf("viewer list: %v", err)
	}
	wantIDs(viewerTasks, "t-v1")

	// Owner visibility is a superset of admin, which is a superset of viewer.
	seen := make(map[string]bool, len(ownerTasks))
	for _, tk := range ownerTasks {
		seen[tk.ID] = true
	}
	for _, tk := range append(adminTasks, viewerTasks...) {
		if !seen[tk.ID] {
			t.Fatalf("task %s visible to narrower role but not to owner", tk.ID)
		}
	}
}

func TestListAuditsEachVisibleTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, &Task{ID: "t1", Title: "One", Category: CategoryWork, Status: StatusTodo, OwnerID: "v1", OrganizationID: "team-a"})
	f.seed(t, &Task{ID: "t2", Title: "Two", Category: CategoryWork, Status: StatusTodo, OwnerID: "v1", OrganizationID: "team-a"})

	if _, err := f.svc.List(ctx, f.viewer); err != nil {
		t.Fatalf("list: %v", err)
	}
	entries, err := f.log.ByActor(ctx, "v1")
	if err != nil {
		t.Fatalf("by actor: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d audit entries, want 2", len(entries))
	}
	for i, want := range []string{"t1", "t2"} {
		if entries[i].ResourceID != want || entries[i].Action != string(ActionView) {
			t.Fatalf("entries[%d] = %s/%s, want VIEW/%s", i, entries[i].Action, entries[i].ResourceID, want)
		}
	}
}

func TestGetNotFoundBeforeAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, f.viewer, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	f.seed(t, &Task{ID: "t-b", Title: "Other org", Category: CategoryWork, Status: StatusTodo, OwnerID: "b1", OrganizationID: "team-b"})
	_, err := f.svc.Get(ctx, f.admin, "t-b")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if got := err.Error(); got != "task: permission denied: "+ReasonCrossOrgAdmin {
		t.Fatalf("unexpected denial message: %q", got)
	}
}

func TestDeniedOperationsLeaveNoAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, &Task{ID: "t-b", Title: "Other org", Category: CategoryWork, Status: StatusTodo, OwnerID: "b1", OrganizationID: "team-b"})

	if _, err := f.svc.Get(ctx, f.admin, "t-b"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected denial, got %v", err)
	}
	if _, err := f.svc.Delete(ctx, f.viewer, "t-b"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected denial, got %v", err)
	}

	entries, err := f.log.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("denied operations produced %d audit entries", len(entries))
	}
}

func TestCreateForcesActorOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.admin, CreateInput{Title: "Triage", Category: CategoryWork})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.OrganizationID != "team-a" {
		t.Fatalf("organization = %s, want team-a", created.OrganizationID)
	}
	if created.OwnerID != "a1" {
		t.Fatalf("owner = %s, want actor a1", created.OwnerID)
	}
	if created.Status != StatusTodo {
		t.Fatalf("status = %s, want %s", created.Status, StatusTodo)
	}

	entries, err := f.log.ByResource(ctx, created.ID)
	if err != nil {
		t.Fatalf("by resource: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != string(ActionCreate) {
		t.Fatalf("unexpected audit trail: %+v", entries)
	}
	if entries[0].Details != "Created task: Triage" {
		t.Fatalf("details = %q", entries[0].Details)
	}
}

func TestCreateRejectsViewerAndBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.viewer, CreateInput{Title: "Nope", Category: CategoryWork})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if got := err.Error(); got != "task: permission denied: "+ReasonViewerCreate {
		t.Fatalf("unexpected denial message: %q", got)
	}

	if _, err := f.svc.Create(ctx, f.admin, CreateInput{Category: CategoryWork}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing title, got %v", err)
	}
	if _, err := f.svc.Create(ctx, f.admin, CreateInput{Title: "No category"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing category, got %v", err)
	}
}

func TestUpdateAppliesPatchAndAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, &Task{ID: "t1", Title: "Draft", Category: CategoryWork, Status: StatusTodo, OwnerID: "v1", OrganizationID: "team-a"})

	title := "Final"
	status := StatusDone
	updated, err := f.svc.Update(ctx, f.admin, "t1", UpdateInput{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Final" || updated.Status != StatusDone {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Category != CategoryWork || updated.OwnerID != "v1" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	entries, err := f.log.ByResource(ctx, "t1")
	if err != nil {
		t.Fatalf("by resource: %v", err)
	}
	if len(entries) != 1 || entries[0].Details != "Updated task: Final" {
		t.Fatalf("unexpected audit trail: %+v", entries)
	}
}

func TestViewerCannotMutateOwnTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, &Task{ID: "t1", Title: "Mine", Category: CategoryWork, Status: StatusTodo, OwnerID: "v1", OrganizationID: "team-a"})

	status := StatusDone
	_, err := f.svc.Update(ctx, f.viewer, "t1", UpdateInput{Status: &status})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if got := err.Error(); got != "task: permission denied: "+ReasonViewerMutation {
		t.Fatalf("unexpected denial message: %q", got)
	}
	if _, err := f.svc.Delete(ctx, f.viewer, "t1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on delete, got %v", err)
	}

	got, err := f.svc.Get(ctx, f.viewer, "t1")
	if err != nil {
		t.Fatalf("get after denied mutations: %v", err)
	}
	if got.Status != StatusTodo {
		t.Fatalf("task mutated despite denial: %+v", got)
	}
}

func TestDeleteRemovesTaskAndAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, &Task{ID: "t1", Title: "Stale", Category: CategoryPersonal, Status: StatusDone, OwnerID: "a1", OrganizationID: "team-a"})

	deleted, err := f.svc.Delete(ctx, f.owner, "t1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Title != "Stale" || deleted.OrganizationID != "team-a" {
		t.Fatalf("deleted task not returned intact: %+v", deleted)
	}
	if _, err := f.repo.Find(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("task still present: %v", err)
	}

	entries, err := f.log.ByResource(ctx, "t1")
	if err != nil {
		t.Fatalf("by resource: %v", err)
	}
	if len(entries) != 1 || entries[0].Details != "Deleted task: Stale" {
		t.Fatalf("unexpected audit trail: %+v", entries)
	}
	if entries[0].Resource != "Task" {
		t.Fatalf("resource = %q, want Task", entries[0].Resource)
	}
}

type failingRecorder struct{}

func (failingRecorder) Append(ctx context.Context, e audit.Entry) error {
	return errors.New("audit store down")
}
func (failingRecorder) All(ctx context.Context) ([]audit.Entry, error) { return nil, nil }
func (failingRecorder) ByActor(ctx context.Context, actorID string) ([]audit.Entry, error) {
	return nil, nil
}
func (failingRecorder) ByResource(ctx context.Context, resourceID string) ([]audit.Entry, error) {
	return nil, nil
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc, err := NewService(f.repo, f.svc.orgs, failingRecorder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := svc.Create(ctx, f.admin, CreateInput{Title: "Resilient", Category: CategoryWork})
	if err != nil {
		t.Fatalf("create with failing recorder: %v", err)
	}
	if _, err := f.repo.Find(ctx, created.ID); err != nil {
		t.Fatalf("task not persisted: %v", err)
	}
	if _, err := svc.Delete(ctx, f.admin, created.ID); err != nil {
		t.Fatalf("delete with failing recorder: %v", err)
	}
}
