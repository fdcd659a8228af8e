package skew

import (
	"context"
	"time"

	"optionskew/internal/models"
)

// SideAggregate accumulates one side of the balanced set during Phase 2.
type SideAggregate struct {
	// Oi is the summed open interest across contracts with data.
	Oi int64
	// WeightedDelta is the open-interest-weighted delta sum; divide by Oi
	// for the average.
	WeightedDelta float64
	// Count is the number of contracts that reported open interest.
	Count int
}

// AverageDelta returns the open-interest-weighted average delta.
func (a SideAggregate) AverageDelta() float64 {
	if a.Oi == 0 {
		return 0
	}
	return a.WeightedDelta / float64(a.Oi)
}

// ComputeSkew packages Phase-2 aggregates into a SkewResult. Callers
// guarantee both open-interest sums are positive.
func ComputeSkew(symbol string, chain *models.ChainResult, callAgg, putAgg SideAggregate, computedAt time.Time) *models.SkewResult {
	return &models.SkewResult{
		Symbol:         symbol,
		Skew:           float64(putAgg.Oi) / float64(callAgg.Oi),
		ExpirationDate: chain.ExpirationDate,
		DTE:            chain.DTE,
		CallOi:         callAgg.Oi,
		PutOi:          putAgg.Oi,
		CallDelta:      callAgg.AverageDelta(),
		PutDelta:       putAgg.AverageDelta(),
		CallCount:      callAgg.Count,
		PutCount:       putAgg.Count,
		ComputedAt:     computedAt,
	}
}

// Pricer is an optional post-processing hook that fills the pricing-derived
// fields (PricingSkew, ImpliedMove, UnderlyingPrice) from a separate quote
// source. The streaming core never derives them itself.
type Pricer interface {
	Price(ctx context.Context, symbol string, result *models.SkewResult) error
}
