package events

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"nomadpool/pkg/requestcontext"
)

// Publisher records domain events and feeds them to the background worker.
// Emission happens after the owning transaction commits, so an event always
// describes a fact the ledger already holds.
type Publisher struct {
	store  Store
	inbox  chan Event
	logger *slog.Logger
}

// NewPublisher wires a publisher over the given store. The inbox is the
// channel the worker consumes; a buffered channel decouples request latency
// from the sink.
func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:  store,
		inbox:  make(chan Event, 256),
		logger: logger,
	}
}

// Inbox exposes the worker side of the event channel.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Emit persists an event and hands it to the sink worker. The sink is best
// effort: if the inbox is full the event is dropped from the sink but kept
// in the store.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "event inbox full, sink delivery skipped",
			"event_id", event.ID,
			"kind", string(event.Kind),
		)
	}
	return nil
}

// List returns all recorded events in emission order.
func (p *Publisher) List(ctx context.Context) ([]Event, error) {
	return p.store.List(ctx)
}
