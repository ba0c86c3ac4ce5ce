package task

import (
	"fmt"
	"strings"
	"time"
)

// Status is the closed task lifecycle set.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Category is the closed task category set.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
)

// Action identifies the operation an actor attempts on a task. The same
// values are recorded in the audit trail.
type Action string

const (
	ActionView   Action = "VIEW"
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Mutates reports whether the action changes state.
func (a Action) Mutates() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// ParseStatus normalizes loosely-typed status input ("In Progress", "TODO")
// into the closed set. The core only ever sees the result of this parse.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	switch normalized {
	case "todo":
		return StatusTodo, nil
	case "in_progress", "inprogress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
}

// ParseCategory normalizes loosely-typed category input into the closed set.
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "work":
		return CategoryWork, nil
	case "personal":
		return CategoryPersonal, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, raw)
}

// Task belongs to exactly one organization and is assigned to exactly one
// user at a time.
type Task struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Status         Status    `json:"status"`
	Category       Category  `json:"category"`
	OwnerID        string    `json:"owner_id"`
	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
