package testutil

import (
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/google/uuid"
)

// Week 2026-W05 runs Monday 26 January to Sunday 1 February 2026.
var (
	TestWeekID = "2026-W05"
	TestMonday = time.Date(2026, time.January, 26, 0, 0, 0, 0, time.UTC)
)

// TimeLog options
type TimeLogOption func(*domain.TimeLog)

func WithSource(s domain.LogSource) TimeLogOption {
	return func(l *domain.TimeLog) {
		l.Source = s
	}
}

func WithDescription(d string) TimeLogOption {
	return func(l *domain.TimeLog) {
		l.Description = d
	}
}

func WithProject(id string) TimeLogOption {
	return func(l *domain.TimeLog) {
		l.ProjectID = id
	}
}

// NewTestTimeLog builds a manual log of the given hours starting 09:00 on day.
func NewTestTimeLog(userID, taskID string, day time.Time, hours float64, opts ...TimeLogOption) *domain.TimeLog {
	start := domain.StartOfDay(day).Add(9 * time.Hour)
	sec := domain.HoursToSeconds(hours)
	l := &domain.TimeLog{
		ID:          uuid.New().String(),
		UserID:      userID,
		TaskID:      taskID,
		ProjectID:   "proj-1",
		Date:        domain.StartOfDay(day),
		StartedAt:   start,
		EndedAt:     start.Add(time.Duration(sec) * time.Second),
		DurationSec: sec,
		Source:      domain.SourceManual,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Timesheet options
type TimesheetOption func(*domain.Timesheet)

func WithStatus(s domain.TimesheetStatus) TimesheetOption {
	return func(ts *domain.Timesheet) {
		ts.Status = s
	}
}

func NewTestTimesheet(userID, weekID string, opts ...TimesheetOption) *domain.Timesheet {
	ts, err := domain.NewTimesheet(uuid.New().String(), userID, weekID, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		panic(err)
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

func NewTestTimer(userID, taskID string, startedAt time.Time) *domain.ActiveTimer {
	return &domain.ActiveTimer{
		ID:        uuid.New().String(),
		UserID:    userID,
		TaskID:    taskID,
		ProjectID: "proj-1",
		StartedAt: startedAt.UTC().Truncate(time.Second),
		Active:    true,
	}
}

// FakeClock is a settable time source for services under test.
type FakeClock struct {
	T time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{T: t}
}

func (c *FakeClock) Now() time.Time {
	return c.T
}

func (c *FakeClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
