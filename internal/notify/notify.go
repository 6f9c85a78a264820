// Package notify delivers timesheet workflow events to interested parties.
// Delivery is best-effort: callers log failures and carry on.
package notify

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/tally/internal/domain"
)

// Notifier receives workflow events after they have been committed.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}

// NoopNotifier discards all events. Useful for tests.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, domain.Event) error { return nil }

// LogNotifier writes each event to a structured logger. It is the default
// when no webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event domain.Event) error {
	attrs := []any{
		"timesheet_id", event.TimesheetID,
		"user", event.UserID,
		"week", event.WeekID,
		"actor", event.ActorID,
	}
	if event.Reason != "" {
		attrs = append(attrs, "reason", event.Reason)
	}
	n.logger.InfoContext(ctx, string(event.Type), attrs...)
	return nil
}

// Recorder keeps every event in memory.
type Recorder struct {
	Events []domain.Event
}

func (r *Recorder) Notify(_ context.Context, event domain.Event) error {
	r.Events = append(r.Events, event)
	return nil
}
