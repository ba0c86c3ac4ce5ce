package audit

import (
	"context"
	"database/sql"
	"time"

	"taskgrid.org/internal/ids"
)

// PGStore implements Recorder backed by the audit_log table. Insertion order
// is materialized by the seq column.
type PGStore struct {
	db *sql.DB
}

var _ Recorder = (*PGStore)(nil)

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Append(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into audit_log(id, occurred_at, actor_id, actor_email, action, resource, resource_id, details)
		 values($1,$2,$3,$4,$5,$6,$7,$8)`,
		entry.ID, entry.OccurredAt, entry.ActorID, entry.ActorEmail,
		entry.Action, entry.Resource, entry.ResourceID, entry.Details,
	)
	return err
}

func (s *PGStore) All(ctx context.Context) ([]Entry, error) {
	return s.query(ctx,
		`select id, occurred_at, actor_id, actor_email, action, resource, resource_id, details
		 from audit_log order by seq asc`)
}

func (s *PGStore) ByActor(ctx context.Context, actorID string) ([]Entry, error) {
	return s.query(ctx,
		`select id, occurred_at, actor_id, actor_email, action, resource, resource_id, details
		 from audit_log where actor_id=$1 order by seq asc`, actorID)
}

func (s *PGStore) ByResource(ctx context.Context, resourceID string) ([]Entry, error) {
	return s.query(ctx,
		`select id, occurred_at, actor_id, actor_email, action, resource, resource_id, details
		 from audit_log where resource_id=$1 order by seq asc`, resourceID)
}

func (s *PGStore) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.ActorID, &e.ActorEmail,
			&e.Action, &e.Resource, &e.ResourceID, &e.Details); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
