package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
)

// TimeLogRepo is the durable store of worked intervals. Date ranges are
// inclusive calendar dates.
type TimeLogRepo interface {
	Create(ctx context.Context, l *domain.TimeLog) error
	GetByID(ctx context.Context, id string) (*domain.TimeLog, error)
	Update(ctx context.Context, l *domain.TimeLog) error
	Delete(ctx context.Context, id string) error
	ListByUserRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.TimeLog, error)
	ListCell(ctx context.Context, userID, taskID string, date time.Time) ([]*domain.TimeLog, error)
	DeleteCell(ctx context.Context, userID, taskID string, date time.Time) (int64, error)
	SumByUserRange(ctx context.Context, userID string, from, to time.Time) (int64, error)
}

// TimerRepo holds at most one active timer per user.
type TimerRepo interface {
	// Create inserts the session atomically; it returns domain.ErrConflict
	// when the user already has one.
	Create(ctx context.Context, t *domain.ActiveTimer) error
	GetByUser(ctx context.Context, userID string) (*domain.ActiveTimer, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type TimesheetRepo interface {
	// CreateIfAbsent inserts ts unless the (user, week) pair already has a
	// timesheet, and returns whichever row is stored, locked like LockByUserWeek.
	CreateIfAbsent(ctx context.Context, ts *domain.Timesheet) (*domain.Timesheet, error)
	GetByID(ctx context.Context, id string) (*domain.Timesheet, error)
	GetByUserWeek(ctx context.Context, userID, weekID string) (*domain.Timesheet, error)
	// LockByID and LockByUserWeek read the row for update. Inside a
	// transaction they block concurrent writers of the same week.
	LockByID(ctx context.Context, id string) (*domain.Timesheet, error)
	LockByUserWeek(ctx context.Context, userID, weekID string) (*domain.Timesheet, error)
	ListByStatus(ctx context.Context, status domain.TimesheetStatus) ([]*domain.Timesheet, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Timesheet, error)
	// UpdateWorkflow persists status and approval fields. It never touches totals.
	UpdateWorkflow(ctx context.Context, ts *domain.Timesheet) error
	// UpdateTotal is reserved for recomputation.
	UpdateTotal(ctx context.Context, id string, totalSec int64, updatedAt time.Time) error
}
