package events

import (
	"context"
	"log/slog"
)

// Sink forwards events to an external system.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker consumes events from the publisher inbox and forwards them to a
// sink. Sink failures are logged, not fatal: the store already holds the
// event and external indexing lags behind it.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "event sink publish failed",
					"event_id", event.ID,
					"kind", string(event.Kind),
					"error", err.Error(),
				)
			}
		}
	}
}
