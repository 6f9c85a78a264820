package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
)

// Clock supplies the current time. Services never call time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// TimerPolicy bounds timer sessions.
type TimerPolicy struct {
	// MinDuration is the shortest interval Stop will turn into a TimeLog.
	MinDuration time.Duration
	// MaxSession marks older sessions as expired. Zero disables expiry.
	MaxSession time.Duration
}

// DefaultTimerPolicy requires one minute and never expires sessions.
func DefaultTimerPolicy() TimerPolicy {
	return TimerPolicy{MinDuration: time.Minute}
}

// TimerView is the resumable view of an active session.
type TimerView struct {
	Timer          *domain.ActiveTimer
	ElapsedSeconds int64
	Expired        bool
}

// ManualLogInput describes one manually entered interval.
type ManualLogInput struct {
	UserID      string
	TaskID      string
	Date        time.Time
	Start       time.Time
	End         time.Time
	Description string
}

// CellInput is one (task, day) cell of the weekly grid. Hours of zero clear
// the cell.
type CellInput struct {
	TaskID    string
	ProjectID string
	DayIndex  int
	Hours     float64
}

// GridEntry is the resolved content of one grid cell.
type GridEntry struct {
	TaskID    string
	ProjectID string
	DayIndex  int
	Hours     float64
}

// WeekView is a timesheet with its grid and the logs behind it.
type WeekView struct {
	Timesheet *domain.Timesheet
	Entries   []GridEntry
	Logs      []*domain.TimeLog
}

type TimerService interface {
	Start(ctx context.Context, userID, taskID, projectID string) (*domain.ActiveTimer, error)
	Stop(ctx context.Context, userID string) (*domain.TimeLog, error)
	Discard(ctx context.Context, userID string) error
	// GetActive returns nil without error when the user has no session.
	GetActive(ctx context.Context, userID string) (*TimerView, error)
}

type TimeLogService interface {
	CreateManual(ctx context.Context, in ManualLogInput) (*domain.TimeLog, error)
	SaveCell(ctx context.Context, userID, weekID string, cell CellInput) (*domain.Timesheet, error)
	ListLogs(ctx context.Context, userID string, from, to time.Time) ([]*domain.TimeLog, error)
}

type TimesheetService interface {
	GetOrCreate(ctx context.Context, userID, weekID string) (*domain.Timesheet, error)
	Recompute(ctx context.Context, timesheetID string) (*domain.Timesheet, error)
	SaveEntries(ctx context.Context, userID, timesheetID string, cells []CellInput) (*domain.Timesheet, error)
	GetWeek(ctx context.Context, viewerID, userID, weekID string) (*WeekView, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Timesheet, error)
}

type ApprovalService interface {
	Submit(ctx context.Context, actorID, timesheetID string) (*domain.Timesheet, error)
	SubmitWeek(ctx context.Context, actorID, weekID string) (*domain.Timesheet, error)
	Approve(ctx context.Context, actorID, timesheetID string) (*domain.Timesheet, error)
	Reject(ctx context.Context, actorID, timesheetID, reason string) (*domain.Timesheet, error)
	ListPending(ctx context.Context, viewerID string) ([]*domain.Timesheet, error)
}
