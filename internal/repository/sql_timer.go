package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

// SQLTimerRepo implements TimerRepo. The user_id primary key on
// active_timers is what makes Create a compare-and-swap.
type SQLTimerRepo struct {
	db db.DBTX
}

// NewSQLTimerRepo creates a new SQLTimerRepo.
func NewSQLTimerRepo(db db.DBTX) *SQLTimerRepo {
	return &SQLTimerRepo{db: db}
}

func (r *SQLTimerRepo) Create(ctx context.Context, t *domain.ActiveTimer) error {
	query := `INSERT INTO active_timers (user_id, id, task_id, project_id, started_at, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		t.UserID,
		t.ID,
		t.TaskID,
		t.ProjectID,
		formatTime(t.StartedAt),
		boolToInt(true),
	)
	if err != nil {
		return fmt.Errorf("inserting active timer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting inserted active timers: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %s already has an active timer", domain.ErrConflict, t.UserID)
	}
	t.Active = true
	return nil
}

func (r *SQLTimerRepo) GetByUser(ctx context.Context, userID string) (*domain.ActiveTimer, error) {
	query := `SELECT id, user_id, task_id, project_id, started_at, active
		FROM active_timers WHERE user_id = ?`
	var t domain.ActiveTimer
	var startedStr string
	var active int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&t.ID, &t.UserID, &t.TaskID, &t.ProjectID, &startedStr, &active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active timer for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning active timer: %w", err)
	}
	if t.StartedAt, err = parseTime("started_at", startedStr); err != nil {
		return nil, err
	}
	t.Active = intToBool(active)
	return &t, nil
}

func (r *SQLTimerRepo) DeleteByUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM active_timers WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting active timer: %w", err)
	}
	return requireAffected(res, "active timer for user", userID)
}
