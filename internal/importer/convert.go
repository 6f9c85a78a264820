package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/tally/internal/domain"
)

// Assignment links a user to a task.
type Assignment struct {
	TaskID string
	UserID string
}

// Plan is a validated seed converted to domain objects.
type Plan struct {
	Users       []*domain.User
	Tasks       []*domain.Task
	Assignments []Assignment
}

// Convert transforms a validated ImportSchema into domain objects.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema) *Plan {
	plan := &Plan{
		Users: make([]*domain.User, 0, len(schema.Users)),
		Tasks: make([]*domain.Task, 0, len(schema.Tasks)),
	}

	for _, u := range schema.Users {
		role := domain.RoleEmployee
		if u.Role != "" {
			role = domain.Role(u.Role)
		}
		plan.Users = append(plan.Users, &domain.User{ID: u.ID, Name: u.Name, Role: role})
	}

	for _, t := range schema.Tasks {
		plan.Tasks = append(plan.Tasks, &domain.Task{ID: t.ID, ProjectID: t.ProjectID, Title: t.Title})
		for _, userID := range t.Assignees {
			plan.Assignments = append(plan.Assignments, Assignment{TaskID: t.ID, UserID: userID})
		}
	}

	return plan
}

// Writer persists directory entries. Every method is an upsert.
type Writer interface {
	PutUser(ctx context.Context, u *domain.User) error
	PutTask(ctx context.Context, t *domain.Task) error
	Assign(ctx context.Context, taskID, userID string) error
}

// Apply writes users first, then tasks, then assignments. It stops at the
// first failure; re-running a seed is safe.
func Apply(ctx context.Context, w Writer, plan *Plan) error {
	for _, u := range plan.Users {
		if err := w.PutUser(ctx, u); err != nil {
			return fmt.Errorf("importing user %s: %w", u.ID, err)
		}
	}
	for _, t := range plan.Tasks {
		if err := w.PutTask(ctx, t); err != nil {
			return fmt.Errorf("importing task %s: %w", t.ID, err)
		}
	}
	for _, a := range plan.Assignments {
		if err := w.Assign(ctx, a.TaskID, a.UserID); err != nil {
			return fmt.Errorf("assigning %s to %s: %w", a.UserID, a.TaskID, err)
		}
	}
	return nil
}

// Load reads, validates and converts a seed file. Validation failures are
// joined into one ErrValidation.
func Load(path string) (*Plan, error) {
	schema, err := LoadImportSchema(path)
	if err != nil {
		return nil, err
	}
	if errs := ValidateImportSchema(schema); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}
	return Convert(schema), nil
}
