// Package models defines the core domain types for skew computation.
package models

import "time"

// ChainResult holds the resolved option chain for one computation: the
// streamer symbols for every strike of the chosen expiration, in strike
// order.
type ChainResult struct {
	StreamSymbols  []string  `json:"stream_symbols"`
	ExpirationDate time.Time `json:"expiration_date"`
	DTE            int       `json:"dte"`
}

// CandidateStrike is a single contract considered for the balanced set.
type CandidateStrike struct {
	Symbol string  `json:"symbol"`
	Delta  float64 `json:"delta"`
}

// SkewResult is the durable output of one pipeline run. Immutable once
// produced; shared read-only by the cache and the history store.
type SkewResult struct {
	Symbol          string    `json:"symbol"`
	Skew            float64   `json:"skew"`
	PricingSkew     *float64  `json:"pricing_skew,omitempty"`
	ImpliedMove     *float64  `json:"implied_move,omitempty"`
	UnderlyingPrice *float64  `json:"underlying_price,omitempty"`
	ExpirationDate  time.Time `json:"expiration_date"`
	DTE             int       `json:"dte"`
	CallOi          int64     `json:"call_oi"`
	PutOi           int64     `json:"put_oi"`
	CallDelta       float64   `json:"call_delta"`
	PutDelta        float64   `json:"put_delta"`
	CallCount       int       `json:"call_count"`
	PutCount        int       `json:"put_count"`
	ComputedAt      time.Time `json:"computed_at"`
}

// BatchSummary is the aggregate emitted when a batch completes or aborts.
type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
