package org

import "context"

// defaultMaxDepth bounds traversal of a corrupted (cyclic or absurdly deep)
// parent chain. Legitimate tenant trees are a handful of levels deep.
const defaultMaxDepth = 64

// HierarchyResolver computes the transitive descendant set of an organization.
type HierarchyResolver struct {
	store    ChildLister
	maxDepth int
}

// NewHierarchyResolver constructs a resolver over the given store.
func NewHierarchyResolver(store ChildLister) *HierarchyResolver {
	return &HierarchyResolver{store: store, maxDepth: defaultMaxDepth}
}

// DescendantIDs returns the ids reachable from rootID via parent->child links,
// rootID included. A root with no record simply has no children, so the result
// degrades to {rootID}. The visited set guarantees termination and idempotence
// even when the parent relation is cyclic; on a depth-bound hit the resolver
// stops expanding and returns what was collected rather than failing.
func (r *HierarchyResolver) DescendantIDs(ctx context.Context, rootID string) ([]string, error) {
	visited := map[string]struct{}{rootID: {}}
	result := []string{rootID}

	frontier := []string{rootID}
	for depth := 0; depth < r.maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			children, err := r.store.Children(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if _, seen := visited[child.ID]; seen {
					continue
				}
				visited[child.ID] = struct{}{}
				result = append(result, child.ID)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}
	return result, nil
}
