package httpapi

import (
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
)

type timerView struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	TaskID         string    `json:"taskId"`
	ProjectID      string    `json:"projectId"`
	StartedAt      time.Time `json:"startedAt"`
	Active         bool      `json:"active"`
	ElapsedSeconds int64     `json:"elapsedSeconds"`
	Expired        bool      `json:"expired"`
}

func newTimerView(t *domain.ActiveTimer, elapsed int64, expired bool) timerView {
	return timerView{
		ID:             t.ID,
		UserID:         t.UserID,
		TaskID:         t.TaskID,
		ProjectID:      t.ProjectID,
		StartedAt:      t.StartedAt,
		Active:         t.Active,
		ElapsedSeconds: elapsed,
		Expired:        expired,
	}
}

type timeLogView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	TaskID      string    `json:"taskId"`
	ProjectID   string    `json:"projectId"`
	Date        string    `json:"date"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Duration    float64   `json:"duration"`
	Source      string    `json:"source"`
	IsManual    bool      `json:"isManual"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newTimeLogView(l *domain.TimeLog) timeLogView {
	return timeLogView{
		ID:          l.ID,
		UserID:      l.UserID,
		TaskID:      l.TaskID,
		ProjectID:   l.ProjectID,
		Date:        l.Date.Format(domain.DateLayout),
		StartTime:   l.StartedAt,
		EndTime:     l.EndedAt,
		Duration:    l.Hours(),
		Source:      string(l.Source),
		IsManual:    l.Source == domain.SourceManual,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
	}
}

func newTimeLogViews(logs []*domain.TimeLog) []timeLogView {
	views := make([]timeLogView, 0, len(logs))
	for _, l := range logs {
		views = append(views, newTimeLogView(l))
	}
	return views
}

type timesheetView struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	WeekID          string     `json:"weekId"`
	WeekStart       time.Time  `json:"weekStart"`
	WeekEnd         time.Time  `json:"weekEnd"`
	TotalHours      float64    `json:"totalHours"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty"`
}

func newTimesheetView(ts *domain.Timesheet) timesheetView {
	return timesheetView{
		ID:              ts.ID,
		UserID:          ts.UserID,
		WeekID:          ts.WeekID,
		WeekStart:       ts.WeekStart,
		WeekEnd:         ts.WeekEnd,
		TotalHours:      ts.TotalHours(),
		Status:          string(ts.Status),
		RejectionReason: ts.RejectionReason,
		SubmittedAt:     ts.SubmittedAt,
		ApprovedAt:      ts.ApprovedAt,
		ApprovedBy:      ts.ApprovedBy,
		RejectedAt:      ts.RejectedAt,
		RejectedBy:      ts.RejectedBy,
	}
}

type entryView struct {
	TaskID    string  `json:"taskId"`
	ProjectID string  `json:"projectId"`
	DayIndex  int     `json:"dayIndex"`
	Duration  float64 `json:"duration"`
}

type weekView struct {
	Timesheet timesheetView `json:"timesheet"`
	Entries   []entryView   `json:"entries"`
	Logs      []timeLogView `json:"logs"`
}

func newWeekView(v *service.WeekView) weekView {
	entries := make([]entryView, 0, len(v.Entries))
	for _, e := range v.Entries {
		entries = append(entries, entryView{
			TaskID:    e.TaskID,
			ProjectID: e.ProjectID,
			DayIndex:  e.DayIndex,
			Duration:  e.Hours,
		})
	}
	return weekView{
		Timesheet: newTimesheetView(v.Timesheet),
		Entries:   entries,
		Logs:      newTimeLogViews(v.Logs),
	}
}
