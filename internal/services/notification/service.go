// Package notification delivers outbox events to the external dispatcher.
// Delivery is asynchronous and at-least-once; a failure is logged and
// retried, never surfaced to the operation that produced the event.
package notification

import (
	"context"

	"vendora/internal/models"

	"go.uber.org/zap"
)

// Dispatcher is the external notification collaborator's inbound contract.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *models.NotificationEvent) error
}

// LogDispatcher is the default dispatcher: it logs the event. Real delivery
// transports plug in behind the same interface.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, event *models.NotificationEvent) error {
	d.logger.Info("notification dispatched",
		zap.String("event_id", event.EventID),
		zap.String("type", event.Type),
		zap.Uint("user_id", event.UserID),
		zap.String("summary", event.Summary))
	return nil
}
