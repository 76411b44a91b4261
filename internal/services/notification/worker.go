package notification

import (
	"context"
	"time"

	"vendora/internal/repositories"

	"go.uber.org/zap"
)

// Worker polls the notification outbox and hands pending events to the
// dispatcher. FetchPending claims its batch by moving the rows to processing,
// so multiple workers can run concurrently without double-delivering; a
// failed delivery increments the attempt counter and goes back to pending for
// the next poll.
type Worker struct {
	repo       repositories.OutboxRepository
	dispatcher Dispatcher
	logger     *zap.Logger
	interval   time.Duration
	batchSize  int
}

func NewWorker(repo repositories.OutboxRepository, dispatcher Dispatcher, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   5 * time.Second,
		batchSize:  50,
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	events, err := w.repo.FetchPending(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("failed to fetch pending notifications", zap.Error(err))
		return
	}

	for i := range events {
		event := &events[i]
		if err := w.dispatcher.Dispatch(ctx, event); err != nil {
			w.logger.Warn("notification delivery failed",
				zap.String("event_id", event.EventID),
				zap.Int("attempts", event.Attempts+1),
				zap.Error(err))
			if err := w.repo.MarkFailed(ctx, event.ID, err.Error()); err != nil {
				w.logger.Error("failed to record delivery failure", zap.Error(err))
			}
			continue
		}
		if err := w.repo.MarkDelivered(ctx, event.ID); err != nil {
			// The claim goes stale and the event is redelivered; the
			// dispatcher contract is at-least-once.
			w.logger.Error("failed to mark event delivered",
				zap.String("event_id", event.EventID),
				zap.Error(err))
		}
	}
}
