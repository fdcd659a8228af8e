// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"optionskew/internal/models"
)

// HistoryStore defines the interface for the append-only skew history.
// Writes are best-effort: the computation pipeline logs persistence failures
// and never propagates or retries them.
type HistoryStore interface {
	SaveSnapshot(ctx context.Context, symbol string, result *models.SkewResult) error
	GetSnapshots(ctx context.Context, filter SnapshotFilter) ([]Snapshot, error)
	Close() error
}

// SnapshotFilter represents filters for querying snapshots.
type SnapshotFilter struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// Snapshot is one persisted skew observation.
type Snapshot struct {
	ID        int64              `json:"id"`
	Symbol    string             `json:"symbol"`
	Result    models.SkewResult  `json:"result"`
	CreatedAt time.Time          `json:"created_at"`
}
