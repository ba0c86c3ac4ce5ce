package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskgrid.org/internal/ids"
	"taskgrid.org/internal/task"
)

// TaskRepository implements task.Repository over the tasks table. Listing
// order is creation order so audit trails line up with what users see.
type TaskRepository struct {
	db *sql.DB
}

var _ task.Repository = (*TaskRepository)(nil)

func (s *Store) Tasks() *TaskRepository { return &TaskRepository{db: s.db} }

const taskColumns = `id, title, description, status, category, owner_id, organization_id, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	row := r.db.QueryRowContext(ctx, `
		insert into tasks (id, title, description, status, category, owner_id, organization_id)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning created_at, updated_at
	`, t.ID, t.Title, t.Description, string(t.Status), string(t.Category), t.OwnerID, t.OrganizationID)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return task.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *TaskRepository) Find(ctx context.Context, id string) (*task.Task, error) {
	var (
		t                task.Task
		status, category string
	)
	err := r.db.QueryRowContext(ctx,
		`select `+taskColumns+` from tasks where id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Description, &status, &category,
			&t.OwnerID, &t.OrganizationID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Status = task.Status(status)
	t.Category = task.Category(category)
	return &t, nil
}

func (r *TaskRepository) ListByOrganizations(ctx context.Context, orgIDs []string) ([]*task.Task, error) {
	if len(orgIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(orgIDs))
	args := make([]any, len(orgIDs))
	for i, id := range orgIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `select ` + taskColumns + ` from tasks where organization_id in (` +
		strings.Join(placeholders, ",") + `) order by created_at asc, id asc`
	return r.list(ctx, query, args...)
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*task.Task, error) {
	return r.list(ctx,
		`select `+taskColumns+` from tasks where owner_id = $1 order by created_at asc, id asc`,
		ownerID)
}

func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	row := r.db.QueryRowContext(ctx, `
		update tasks
		set title = $2, description = $3, status = $4, category = $5, owner_id = $6, updated_at = now()
		where id = $1
		returning updated_at
	`, t.ID, t.Title, t.Description, string(t.Status), string(t.Category), t.OwnerID)
	err := row.Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return task.ErrNotFound
	}
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return task.ErrNotFound
	}
	return err
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `delete from tasks where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*task.Task
	for rows.Next() {
		var (
			t                task.Task
			status, category string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &category,
			&t.OwnerID, &t.OrganizationID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Status = task.Status(status)
		t.Category = task.Category(category)
		out = append(out, &t)
	}
	return out, rows.Err()
}
