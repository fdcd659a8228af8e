// Package feed provides the live market-data feed session.
package feed

import "context"

// EventType identifies the kind of a feed event.
type EventType string

// Feed event types, matching the upstream event names.
const (
	EventTypeGreeks  EventType = "Greeks"
	EventTypeSummary EventType = "Summary"
	EventTypeQuote   EventType = "Quote"
	EventTypeTrade   EventType = "Trade"
)

// Event is one observation pushed by the feed. Numeric fields are pointers:
// the upstream sends NaN for values it has no data for, and those arrive
// here as nil.
type Event struct {
	Type         EventType
	Symbol       string
	Delta        *float64
	OpenInterest *int64
	BidPrice     *float64
	AskPrice     *float64
	Price        *float64
}

// Session is an explicitly owned live-feed connection. One session is shared
// by all collection phases of a process; callers serialize access to it.
// All operations are safe to call when already in the target state.
type Session interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Subscribe(symbols []string) error
	Unsubscribe(symbols []string) error

	// Events returns the bounded channel the session pushes observations
	// onto. The channel is never closed; events arriving while no consumer
	// drains it are dropped once the buffer fills.
	Events() <-chan Event

	IsConnected() bool
}
