package domain

import "time"

// Task is the collaborator-owned view of a task that time is logged against.
type Task struct {
	ID        string
	ProjectID string
	Title     string
}

// User is the collaborator-owned view of a worker and their role.
type User struct {
	ID   string
	Name string
	Role Role
}

// Event is emitted to the notification collaborator after a workflow transition.
type Event struct {
	Type        EventType `json:"type"`
	TimesheetID string    `json:"timesheetId"`
	UserID      string    `json:"user"`
	WeekID      string    `json:"weekId"`
	ActorID     string    `json:"actor"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}
