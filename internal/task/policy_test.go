package task

import (
	"testing"

	"taskgrid.org/internal/auth"
)

func TestAuthorizeOwnerAlwaysAllowed(t *testing.T) {
	owner := auth.Actor{ID: "o1", Role: auth.RoleOwner, OrganizationID: "root"}
	foreign := Task{ID: "t1", OwnerID: "someone", OrganizationID: "unrelated-org"}

	for _, action := range []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
		if d := Authorize(owner, foreign, action); !d.Allowed {
			t.Fatalf("owner denied %s: %s", action, d.Reason)
		}
	}
}

func TestAuthorizeAdminScopedToOrganization(t *testing.T) {
	admin := auth.Actor{ID: "a1", Role: auth.RoleAdmin, OrganizationID: "team-a"}

	same := Task{ID: "t1", OwnerID: "v1", OrganizationID: "team-a"}
	if d := Authorize(admin, same, ActionDelete); !d.Allowed {
		t.Fatalf("admin denied in own org: %s", d.Reason)
	}

	other := Task{ID: "t2", OwnerID: "v2", OrganizationID: "team-b"}
	d := Authorize(admin, other, ActionView)
	if d.Allowed {
		t.Fatal("admin allowed across organizations")
	}
	if d.Reason != ReasonCrossOrgAdmin {
		t.Fatalf("unexpected reason: %s", d.Reason)
	}
}

func TestAuthorizeViewerViewOnlyOwnTasks(t *testing.T) {
	viewer := auth.Actor{ID: "v1", Role: auth.RoleViewer, OrganizationID: "team-a"}

	own := Task{ID: "t1", OwnerID: "v1", OrganizationID: "team-a"}
	if d := Authorize(viewer, own, ActionView); !d.Allowed {
		t.Fatalf("viewer denied own task: %s", d.Reason)
	}

	foreign := Task{ID: "t2", OwnerID: "v2", OrganizationID: "team-a"}
	d := Authorize(viewer, foreign, ActionView)
	if d.Allowed {
		t.Fatal("viewer allowed on another user's task")
	}
	if d.Reason != ReasonViewerNotOwner {
		t.Fatalf("unexpected reason: %s", d.Reason)
	}
}

func TestAuthorizeViewerMutationDenialIsAbsolute(t *testing.T) {
	viewer := auth.Actor{ID: "v1", Role: auth.RoleViewer, OrganizationID: "team-a"}
	own := Task{ID: "t1", OwnerID: "v1", OrganizationID: "team-a"}

	for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
		d := Authorize(viewer, own, action)
		if d.Allowed {
			t.Fatalf("viewer allowed to %s own task", action)
		}
		if d.Reason != ReasonViewerMutation {
			t.Fatalf("unexpected reason for %s: %s", action, d.Reason)
		}
	}
}

func TestAuthorizeUnknownRoleDenied(t *testing.T) {
	impostor := auth.Actor{ID: "x1", Role: "superuser", OrganizationID: "team-a"}
	d := Authorize(impostor, Task{ID: "t1", OwnerID: "x1", OrganizationID: "team-a"}, ActionView)
	if d.Allowed {
		t.Fatal("unknown role allowed")
	}
	if d.Reason != ReasonNoPermission {
		t.Fatalf("unexpected reason: %s", d.Reason)
	}
}
