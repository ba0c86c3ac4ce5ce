package pg

import (
	"context"
	"database/sql"
	"errors"

	"taskgrid.org/internal/ids"
	"taskgrid.org/internal/org"
)

// OrgStore implements org.Store over the organizations table.
type OrgStore struct {
	db *sql.DB
}

var _ org.Store = (*OrgStore)(nil)

func (s *Store) Orgs() *OrgStore { return &OrgStore{db: s.db} }

func (s *OrgStore) Create(ctx context.Context, o *org.Organization) error {
	if o.ID == "" {
		o.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into organizations (id, name, parent_id)
		values ($1, $2, nullif($3, ''))
		returning created_at, updated_at
	`, o.ID, o.Name, o.ParentID)
	if err := row.Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return org.ErrConflict
			case pgErrForeignKeyViolation:
				return org.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *OrgStore) Find(ctx context.Context, id string) (*org.Organization, error) {
	return s.one(ctx, `
		select id, name, coalesce(parent_id, ''), created_at, updated_at
		from organizations
		where id = $1
	`, id)
}

func (s *OrgStore) FindByName(ctx context.Context, name string) (*org.Organization, error) {
	return s.one(ctx, `
		select id, name, coalesce(parent_id, ''), created_at, updated_at
		from organizations
		where lower(name) = lower($1)
	`, name)
}

func (s *OrgStore) Children(ctx context.Context, parentID string) ([]*org.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, coalesce(parent_id, ''), created_at, updated_at
		from organizations
		where parent_id = $1
		order by created_at asc, id asc
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*org.Organization
	for rows.Next() {
		var o org.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.ParentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *OrgStore) one(ctx context.Context, query string, arg any) (*org.Organization, error) {
	var o org.Organization
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&o.ID, &o.Name, &o.ParentID, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, org.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
