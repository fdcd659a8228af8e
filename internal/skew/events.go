package skew

import "optionskew/internal/models"

// EventType identifies a progress event in a single-symbol computation.
type EventType string

// Single-symbol progress events. A computation terminates with exactly one
// of EventResult or EventError.
const (
	EventConnected EventType = "connected"
	EventCached    EventType = "cached"
	EventChain     EventType = "chain"
	EventPhase1    EventType = "phase1"
	EventPhase2    EventType = "phase2"
	EventResult    EventType = "result"
	EventError     EventType = "error"
)

// Event is one progress emission from a single-symbol computation.
type Event struct {
	Type   EventType           `json:"type"`
	Symbol string              `json:"symbol"`
	Chain  *models.ChainResult `json:"chain,omitempty"`
	Result *models.SkewResult  `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// BatchStatus is the per-symbol state reported during a batch run.
type BatchStatus string

// Batch per-symbol statuses.
const (
	StatusPending     BatchStatus = "pending"
	StatusCalculating BatchStatus = "calculating"
	StatusPhase1      BatchStatus = "phase1"
	StatusPhase2      BatchStatus = "phase2"
	StatusCached      BatchStatus = "cached"
	StatusComplete    BatchStatus = "complete"
	StatusError       BatchStatus = "error"
)

// BatchEventType identifies a batch stream event.
type BatchEventType string

// Batch stream events: one connected, any number of progress, one complete.
const (
	BatchConnected BatchEventType = "connected"
	BatchProgress  BatchEventType = "progress"
	BatchComplete  BatchEventType = "complete"
)

// BatchEvent is one emission from a batch computation.
type BatchEvent struct {
	Type    BatchEventType       `json:"type"`
	Symbol  string               `json:"symbol,omitempty"`
	Status  BatchStatus          `json:"status,omitempty"`
	Data    *models.SkewResult   `json:"data,omitempty"`
	Error   string               `json:"error,omitempty"`
	Summary *models.BatchSummary `json:"summary,omitempty"`
	Errors  map[string]string    `json:"errors,omitempty"`
}
