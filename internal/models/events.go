package models

import "time"

// Domain event names. Events are queued on the aggregate during a mutation
// and dispatched by the service layer only after the save succeeds.
const (
	EventAssetCreated    = "asset.created"
	EventAssetUpdated    = "asset.updated"
	EventForecastAdded   = "forecast.added"
	EventForecastRemoved = "forecast.removed"
	EventForecastCreated = "forecast.created"
	EventForecastUpdated = "forecast.updated"
)

// DomainEvent is an immutable record of something that happened to an
// aggregate, carrying a snapshot of the affected entity.
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// AssetCreated is queued when a new asset aggregate is constructed.
type AssetCreated struct {
	Asset *Asset
	At    time.Time
}

func (e AssetCreated) EventName() string     { return EventAssetCreated }
func (e AssetCreated) OccurredAt() time.Time { return e.At }

// AssetUpdated is queued once per Update call, even when every supplied
// field turned out to be a no-op.
type AssetUpdated struct {
	Asset *Asset
	At    time.Time
}

func (e AssetUpdated) EventName() string     { return EventAssetUpdated }
func (e AssetUpdated) OccurredAt() time.Time { return e.At }

// ForecastAdded is queued when a forecast is appended to an asset.
type ForecastAdded struct {
	AssetID  string
	Forecast *Forecast
	At       time.Time
}

func (e ForecastAdded) EventName() string     { return EventForecastAdded }
func (e ForecastAdded) OccurredAt() time.Time { return e.At }

// ForecastRemoved is queued only when the forecast was actually present.
type ForecastRemoved struct {
	AssetID    string
	ForecastID string
	At         time.Time
}

func (e ForecastRemoved) EventName() string     { return EventForecastRemoved }
func (e ForecastRemoved) OccurredAt() time.Time { return e.At }

// ForecastCreated is queued by the forecast factory.
type ForecastCreated struct {
	Forecast *Forecast
	At       time.Time
}

func (e ForecastCreated) EventName() string     { return EventForecastCreated }
func (e ForecastCreated) OccurredAt() time.Time { return e.At }

// ForecastUpdated is queued once per forecast Update call.
type ForecastUpdated struct {
	Forecast *Forecast
	At       time.Time
}

func (e ForecastUpdated) EventName() string     { return EventForecastUpdated }
func (e ForecastUpdated) OccurredAt() time.Time { return e.At }

// eventQueue is the pending side-effect list attached to an aggregate.
// It lives only in memory; GORM never persists it.
type eventQueue struct {
	events []DomainEvent
}

func (q *eventQueue) queue(e DomainEvent) {
	q.events = append(q.events, e)
}

// PendingEvents returns the queued events in the order they were raised.
func (q *eventQueue) PendingEvents() []DomainEvent {
	return q.events
}

// ClearEvents drops all queued events. Called by the service layer after
// dispatch, or to discard events from a failed save.
func (q *eventQueue) ClearEvents() {
	q.events = nil
}
