package task

import "taskgrid.org/internal/auth"

// Denial reasons produced by Authorize. The strings are part of the API
// surface: handlers forward them verbatim to clients and tests match them.
const (
	ReasonCrossOrgAdmin  = "cross-organization access by Admin"
	ReasonViewerNotOwner = "Viewer accessing task not assigned to them"
	ReasonViewerMutation = "Viewers cannot mutate tasks"
	ReasonViewerCreate   = "Viewers cannot create tasks"
	ReasonNoPermission   = "insufficient permissions"
)

// Decision is the outcome of evaluating one actor/task/action triple.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize evaluates the role decision table, first match wins. It is a pure
// function and never fails for a well-formed actor/task pair.
//
// Owner is allowed unconditionally for single-task checks. Listing is scoped
// to the owner's subtree; per-item checks do not re-validate hierarchy
// membership.
func Authorize(actor auth.Actor, t Task, action Action) Decision {
	switch actor.Role {
	case auth.RoleOwner:
		return allow()
	case auth.RoleAdmin:
		if t.OrganizationID == actor.OrganizationID {
			return allow()
		}
		return deny(ReasonCrossOrgAdmin)
	case auth.RoleViewer:
		// Mutation denial is absolute, ownership notwithstanding.
		if action.Mutates() {
			return deny(ReasonViewerMutation)
		}
		if t.OwnerID == actor.ID {
			return allow()
		}
		return deny(ReasonViewerNotOwner)
	}
	return deny(ReasonNoPermission)
}
