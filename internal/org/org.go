package org

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("org: not found")
	ErrConflict = errors.New("org: already exists")
)

// Organization is a tenant node. Organizations form a forest: each node has at
// most one parent, referenced by ParentID ("" for roots).
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
