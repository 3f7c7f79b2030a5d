// Package events delivers queued domain events after a successful save.
package events

import (
	"context"

	"portfolio/internal/logger"
	"portfolio/internal/models"
)

// Dispatcher receives the events drained from an aggregate once its unit of
// work has committed. Events from a failed save are never dispatched.
type Dispatcher interface {
	Dispatch(ctx context.Context, tenantID, actorID string, events []models.DomainEvent)
}

// LogDispatcher writes each event to the structured log. It is the default
// sink when no downstream consumer is configured.
type LogDispatcher struct{}

// NewLogDispatcher creates a new LogDispatcher.
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// Dispatch logs every event with its tenant and actor.
func (d *LogDispatcher) Dispatch(ctx context.Context, tenantID, actorID string, events []models.DomainEvent) {
	for _, e := range events {
		logger.Get().Infow("domain event",
			"event", e.EventName(),
			"tenant_id", tenantID,
			"actor_id", actorID,
			"occurred_at", e.OccurredAt(),
		)
	}
}

// Multi fans events out to several dispatchers in order.
type Multi []Dispatcher

// Dispatch forwards the events to each dispatcher.
func (m Multi) Dispatch(ctx context.Context, tenantID, actorID string, events []models.DomainEvent) {
	for _, d := range m {
		d.Dispatch(ctx, tenantID, actorID, events)
	}
}
