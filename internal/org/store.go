package org

import "context"

// Store manages organization records.
type Store interface {
	Create(ctx context.Context, o *Organization) error
	Find(ctx context.Context, id string) (*Organization, error)
	FindByName(ctx context.Context, name string) (*Organization, error)
	Children(ctx context.Context, parentID string) ([]*Organization, error)
}

// ChildLister is the narrow read surface the hierarchy resolver needs.
type ChildLister interface {
	Children(ctx context.Context, parentID string) ([]*Organization, error)
}
