package domain

import (
	"fmt"
	"time"
)

// TimeLog is one finalized worked interval.
type TimeLog struct {
	ID          string
	UserID      string
	TaskID      string
	ProjectID   string
	Date        time.Time // calendar date, midnight UTC
	StartedAt   time.Time
	EndedAt     time.Time
	DurationSec int64
	Source      LogSource
	Description string
	CreatedAt   time.Time
}

// NewTimeLog builds a TimeLog for [start, end), deriving its duration.
func NewTimeLog(id, userID, taskID, projectID string, date, start, end time.Time, source LogSource, description string, now time.Time) (*TimeLog, error) {
	l := &TimeLog{
		ID:          id,
		UserID:      userID,
		TaskID:      taskID,
		ProjectID:   projectID,
		Date:        StartOfDay(date),
		StartedAt:   start.UTC(),
		EndedAt:     end.UTC(),
		Source:      source,
		Description: description,
		CreatedAt:   now.UTC(),
	}
	l.DurationSec = int64(l.EndedAt.Sub(l.StartedAt) / time.Second)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the interval invariants.
func (l *TimeLog) Validate() error {
	if l.UserID == "" || l.TaskID == "" {
		return fmt.Errorf("%w: time log needs a user and a task", ErrValidation)
	}
	if !l.EndedAt.After(l.StartedAt) {
		return fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	if l.DurationSec <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	switch l.Source {
	case SourceManual, SourceTimer:
	default:
		return fmt.Errorf("%w: unknown log source %q", ErrValidation, l.Source)
	}
	return nil
}

// Hours returns the duration in fractional hours.
func (l *TimeLog) Hours() float64 {
	return SecondsToHours(l.DurationSec)
}

// WeekID returns the ISO week the log is aggregated into.
func (l *TimeLog) WeekID() string {
	return WeekID(l.Date)
}

// SecondsToHours converts whole seconds to fractional hours.
func SecondsToHours(sec int64) float64 {
	return float64(sec) / 3600
}

// HoursToSeconds converts fractional hours to whole seconds, rounding to the
// nearest second.
func HoursToSeconds(h float64) int64 {
	return int64(h*3600 + 0.5)
}
