package domain

import (
	"fmt"
	"strings"
	"time"
)

// Timesheet is the weekly aggregate and approval unit for one user.
// TotalSec is derived from the user's TimeLogs and is written only by
// recomputation.
type Timesheet struct {
	ID              string
	UserID          string
	WeekID          string
	WeekStart       time.Time
	WeekEnd         time.Time
	TotalSec        int64
	Status          TimesheetStatus
	RejectionReason string
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      string
	RejectedAt      *time.Time
	RejectedBy      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTimesheet creates an empty draft for the given ISO week.
func NewTimesheet(id, userID, weekID string, now time.Time) (*Timesheet, error) {
	start, end, err := WeekBounds(weekID)
	if err != nil {
		return nil, err
	}
	return &Timesheet{
		ID:        id,
		UserID:    userID,
		WeekID:    weekID,
		WeekStart: start,
		WeekEnd:   end,
		Status:    TimesheetDraft,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// TotalHours returns the aggregated hours.
func (t *Timesheet) TotalHours() float64 {
	return SecondsToHours(t.TotalSec)
}

// Contains reports whether the calendar date falls inside the week.
func (t *Timesheet) Contains(date time.Time) bool {
	d := StartOfDay(date)
	return !d.Before(t.WeekStart) && !d.After(t.WeekEnd)
}

// Editable reports whether entries may change. Draft weeks are open; a
// rejected week is reopened for correction before resubmission.
func (t *Timesheet) Editable() bool {
	return t.Status == TimesheetDraft || t.Status == TimesheetRejected
}

// EnsureEditable returns ErrState when the week's entries are locked.
func (t *Timesheet) EnsureEditable() error {
	if t.Editable() {
		return nil
	}
	return fmt.Errorf("%w: timesheet %s for week %s is %s and cannot be edited", ErrState, t.ID, t.WeekID, t.Status)
}

// Submit moves a draft or rejected timesheet to submitted.
func (t *Timesheet) Submit(now time.Time) error {
	if t.Status != TimesheetDraft && t.Status != TimesheetRejected {
		return fmt.Errorf("%w: cannot submit a %s timesheet", ErrState, t.Status)
	}
	now = now.UTC()
	t.Status = TimesheetSubmitted
	t.SubmittedAt = &now
	t.RejectionReason = ""
	t.UpdatedAt = now
	return nil
}

// Approve finalizes a submitted timesheet. Approved is terminal.
func (t *Timesheet) Approve(by string, now time.Time) error {
	if t.Status != TimesheetSubmitted {
		return fmt.Errorf("%w: cannot approve a %s timesheet", ErrState, t.Status)
	}
	now = now.UTC()
	t.Status = TimesheetApproved
	t.ApprovedAt = &now
	t.ApprovedBy = by
	t.UpdatedAt = now
	return nil
}

// Reject sends a submitted timesheet back to its owner with a reason.
func (t *Timesheet) Reject(by, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: a rejection reason is required", ErrValidation)
	}
	if t.Status != TimesheetSubmitted {
		return fmt.Errorf("%w: cannot reject a %s timesheet", ErrState, t.Status)
	}
	now = now.UTC()
	t.Status = TimesheetRejected
	t.RejectionReason = reason
	t.RejectedAt = &now
	t.RejectedBy = by
	t.UpdatedAt = now
	return nil
}
