// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"optionskew/internal/models"
)

// SQLiteStore implements HistoryStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based history store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the snapshot table and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Append-only skew observations
	CREATE TABLE IF NOT EXISTS skew_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		skew REAL NOT NULL,
		pricing_skew REAL,
		implied_move REAL,
		underlying_price REAL,
		expiration_date DATE NOT NULL,
		dte INTEGER NOT NULL,
		call_oi INTEGER NOT NULL,
		put_oi INTEGER NOT NULL,
		call_delta REAL NOT NULL,
		put_delta REAL NOT NULL,
		call_count INTEGER NOT NULL,
		put_count INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_time
		ON skew_snapshots(symbol, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot appends one skew observation.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, symbol string, result *models.SkewResult) error {
	query := `
	INSERT INTO skew_snapshots (
		symbol, skew, pricing_skew, implied_move, underlying_price,
		expiration_date, dte, call_oi, put_oi,
		call_delta, put_delta, call_count, put_count, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	createdAt := result.ComputedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		symbol,
		result.Skew,
		result.PricingSkew,
		result.ImpliedMove,
		result.UnderlyingPrice,
		result.ExpirationDate.Format("2006-01-02"),
		result.DTE,
		result.CallOi,
		result.PutOi,
		result.CallDelta,
		result.PutDelta,
		result.CallCount,
		result.PutCount,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshots returns persisted observations, newest first.
func (s *SQLiteStore) GetSnapshots(ctx context.Context, filter SnapshotFilter) ([]Snapshot, error) {
	query := `
	SELECT id, symbol, skew, pricing_skew, implied_move, underlying_price,
		expiration_date, dte, call_oi, put_oi,
		call_delta, put_delta, call_count, put_count, created_at
	FROM skew_snapshots WHERE 1=1`
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if !filter.StartDate.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		var expirationDate string
		err := rows.Scan(
			&snap.ID,
			&snap.Symbol,
			&snap.Result.Skew,
			&snap.Result.PricingSkew,
			&snap.Result.ImpliedMove,
			&snap.Result.UnderlyingPrice,
			&expirationDate,
			&snap.Result.DTE,
			&snap.Result.CallOi,
			&snap.Result.PutOi,
			&snap.Result.CallDelta,
			&snap.Result.PutDelta,
			&snap.Result.CallCount,
			&snap.Result.PutCount,
			&snap.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Result.Symbol = snap.Symbol
		snap.Result.ExpirationDate, _ = time.Parse("2006-01-02", expirationDate)
		snap.Result.ComputedAt = snap.CreatedAt
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements HistoryStore interface
var _ HistoryStore = (*SQLiteStore)(nil)
