package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"taskgrid.org/internal/auth"
	"taskgrid.org/internal/ids"
)

// UserStore implements auth.UserStore over the users table.
type UserStore struct {
	db *sql.DB
}

var _ auth.UserStore = (*UserStore)(nil)

func (s *Store) Users() *UserStore { return &UserStore{db: s.db} }

func (s *UserStore) Create(ctx context.Context, u *auth.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, organization_id, email, password_hash, role)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, u.ID, u.OrganizationID, u.Email, u.PasswordHash, string(u.Role))
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return auth.ErrConflict
			case pgErrForeignKeyViolation:
				return auth.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *UserStore) Find(ctx context.Context, id string) (*auth.User, error) {
	return s.one(ctx, `
		select id, organization_id, email, password_hash, role, created_at, updated_at
		from users
		where id = $1
	`, id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.one(ctx, `
		select id, organization_id, email, password_hash, role, created_at, updated_at
		from users
		where email = lower($1)
	`, strings.TrimSpace(email))
}

func (s *UserStore) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from users where organization_id = $1`, orgID).Scan(&n)
	return n, err
}

func (s *UserStore) one(ctx context.Context, query string, arg any) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.OrganizationID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}
