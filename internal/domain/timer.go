package domain

import "time"

// ActiveTimer is an in-progress, unsaved work interval. Only the start time is
// persisted; elapsed time is always derived from it.
type ActiveTimer struct {
	ID        string
	UserID    string
	TaskID    string
	ProjectID string
	StartedAt time.Time
	Active    bool
}

// Elapsed returns now - start, floored at zero for clock skew.
func (t *ActiveTimer) Elapsed(now time.Time) time.Duration {
	d := now.Sub(t.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Expired reports whether the session has run longer than maxSession.
// A zero maxSession disables expiry.
func (t *ActiveTimer) Expired(now time.Time, maxSession time.Duration) bool {
	return maxSession > 0 && t.Elapsed(now) > maxSession
}
