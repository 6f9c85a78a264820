package domain

type LogSource string

const (
	SourceManual LogSource = "manual"
	SourceTimer  LogSource = "timer"
)

type TimesheetStatus string

const (
	TimesheetDraft     TimesheetStatus = "draft"
	TimesheetSubmitted TimesheetStatus = "submitted"
	TimesheetApproved  TimesheetStatus = "approved"
	TimesheetRejected  TimesheetStatus = "rejected"
)

// ValidTimesheetStatuses is the canonical set of accepted status strings.
var ValidTimesheetStatuses = map[string]bool{
	"draft": true, "submitted": true, "approved": true, "rejected": true,
}

type EventType string

const (
	EventTimesheetSubmitted EventType = "timesheet.submitted"
	EventTimesheetApproved  EventType = "timesheet.approved"
	EventTimesheetRejected  EventType = "timesheet.rejected"
)

// TimerEntryDescription is the description stamped on logs created by stopping a timer.
const TimerEntryDescription = "Timer entry"

// GridEntryDescription is the description stamped on logs created from the weekly grid.
const GridEntryDescription = "Weekly timesheet entry"
