package org

import (
	"context"
	"reflect"
	"sort"
	"testing"
)

func seed(t *testing.T, s *MemoryStore, orgs ...*Organization) {
	t.Helper()
	for _, o := range orgs {
		if err := s.Create(context.Background(), o); err != nil {
			t.Fatalf("seed %s: %v", o.ID, err)
		}
	}
}

func TestDescendantIDsIncludesRoot(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, &Organization{ID: "root", Name: "Root"})

	r := NewHierarchyResolver(s)
	got, err := r.DescendantIDs(context.Background(), "root")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"root"}) {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestDescendantIDsMissingRootDegradesToSelf(t *testing.T) {
	r := NewHierarchyResolver(NewMemoryStore())
	got, err := r.DescendantIDs(context.Background(), "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"ghost"}) {
		t.Fatalf("expected singleton set, got %v", got)
	}
}

func TestDescendantIDsWalksWholeSubtree(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		&Organization{ID: "root", Name: "Root"},
		&Organization{ID: "team-a", Name: "Team A", ParentID: "root"},
		&Organization{ID: "team-b", Name: "Team B", ParentID: "root"},
		&Organization{ID: "squad-a1", Name: "Squad A1", ParentID: "team-a"},
		&Organization{ID: "other", Name: "Other root"},
	)

	r := NewHierarchyResolver(s)
	got, err := r.DescendantIDs(context.Background(), "root")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	want := []string{"root", "squad-a1", "team-a", "team-b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDescendantIDsTerminatesOnCycle(t *testing.T) {
	s := NewMemoryStore()
	// Corrupted data: A and B claim each other as parent.
	seed(t, s,
		&Organization{ID: "a", Name: "A", ParentID: "b"},
		&Organization{ID: "b", Name: "B", ParentID: "a"},
	)

	r := NewHierarchyResolver(s)
	got, err := r.DescendantIDs(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("cycle traversal returned %v", got)
	}
}

func TestDescendantIDsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s,
		&Organization{ID: "root", Name: "Root"},
		&Organization{ID: "child", Name: "Child", ParentID: "root"},
	)

	r := NewHierarchyResolver(s)
	first, err := r.DescendantIDs(context.Background(), "root")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.DescendantIDs(context.Background(), "root")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolution not idempotent: %v vs %v", first, second)
	}
}
