package notify

import (
	"log/slog"

	"github.com/alexanderramin/tally/internal/domain"
)

// DeliveryEvent records metadata about a single webhook delivery.
type DeliveryEvent struct {
	Type      domain.EventType
	Attempts  int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about deliveries for logging and metrics.
type Observer interface {
	OnDelivery(event DeliveryEvent)
}

// LogObserver writes delivery events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnDelivery(event DeliveryEvent) {
	if event.Success {
		o.logger.Debug("notify_delivery",
			"type", event.Type, "attempts", event.Attempts, "latency_ms", event.LatencyMs)
		return
	}
	o.logger.Warn("notify_delivery",
		"type", event.Type, "attempts", event.Attempts, "latency_ms", event.LatencyMs,
		"error_code", event.ErrorCode)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnDelivery(DeliveryEvent) {}
