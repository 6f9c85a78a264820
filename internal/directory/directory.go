// Package directory answers the identity and task questions the time-tracking
// core asks of the outside world: which project a task belongs to, whether a
// user is assigned to it, and which role a user holds.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

// TaskDirectory resolves tasks and assignments.
type TaskDirectory interface {
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	IsAssigned(ctx context.Context, taskID, userID string) (bool, error)
}

// RoleResolver resolves the role of a user.
type RoleResolver interface {
	GetUserRole(ctx context.Context, userID string) (domain.Role, error)
}

// SQLDirectory implements TaskDirectory and RoleResolver over the users,
// tasks and task_assignments tables.
type SQLDirectory struct {
	db db.DBTX
}

func NewSQLDirectory(db db.DBTX) *SQLDirectory {
	return &SQLDirectory{db: db}
}

func (d *SQLDirectory) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	var t domain.Task
	err := d.db.QueryRowContext(ctx,
		`SELECT id, project_id, title FROM tasks WHERE id = ?`, taskID,
	).Scan(&t.ID, &t.ProjectID, &t.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", taskID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	return &t, nil
}

func (d *SQLDirectory) IsAssigned(ctx context.Context, taskID, userID string) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM task_assignments WHERE task_id = ? AND user_id = ?`, taskID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking assignment: %w", err)
	}
	return n > 0, nil
}

// GetUserRole returns the stored role. Unknown users resolve to ErrNotFound.
func (d *SQLDirectory) GetUserRole(ctx context.Context, userID string) (domain.Role, error) {
	u, err := d.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (d *SQLDirectory) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	var role string
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, role FROM users WHERE id = ?`, userID,
	).Scan(&u.ID, &u.Name, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if u.Role, err = domain.ParseRole(role); err != nil {
		return nil, err
	}
	return &u, nil
}

// PutUser inserts or updates a user.
func (d *SQLDirectory) PutUser(ctx context.Context, u *domain.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if _, err := domain.ParseRole(string(u.Role)); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO users (id, name, role, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, role = excluded.role`,
		u.ID, u.Name, string(u.Role), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// PutTask inserts or updates a task.
func (d *SQLDirectory) PutTask(ctx context.Context, t *domain.Task) error {
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.ProjectID) == "" {
		return fmt.Errorf("%w: task id and project id are required", domain.ErrValidation)
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET project_id = excluded.project_id, title = excluded.title`,
		t.ID, t.ProjectID, t.Title, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving task: %w", err)
	}
	return nil
}

// Assign links a user to a task. Assigning twice is a no-op.
func (d *SQLDirectory) Assign(ctx context.Context, taskID, userID string) error {
	if _, err := d.GetTask(ctx, taskID); err != nil {
		return err
	}
	if _, err := d.GetUser(ctx, userID); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO task_assignments (task_id, user_id) VALUES (?, ?)
		ON CONFLICT (task_id, user_id) DO NOTHING`, taskID, userID)
	if err != nil {
		return fmt.Errorf("assigning task: %w", err)
	}
	return nil
}

// Unassign removes the link between a user and a task.
func (d *SQLDirectory) Unassign(ctx context.Context, taskID, userID string) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM task_assignments WHERE task_id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return fmt.Errorf("unassigning task: %w", err)
	}
	return nil
}
