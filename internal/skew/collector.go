package skew

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"optionskew/internal/errors"
	"optionskew/internal/feed"
	"optionskew/internal/logging"
	"optionskew/internal/models"
)

// Collection window defaults. Both phases run their full window: event
// arrival buffers data but never advances the pipeline early.
const (
	DefaultPhase1Window = 5 * time.Second
	DefaultPhase2Window = 10 * time.Second
)

// Collector runs the two streaming collection phases against a feed
// session. The caller holds the feed for the duration of both phases.
type Collector struct {
	session feed.Session
	log     zerolog.Logger
}

// NewCollector creates a collector bound to a feed session.
func NewCollector(session feed.Session, logger zerolog.Logger) *Collector {
	return &Collector{session: session, log: logger}
}

// CollectDeltas is Phase 1: subscribe every chain contract, accumulate a
// delta per streamer symbol from greek events for the full window, then
// unsubscribe. Last write wins per symbol; events with a missing or
// out-of-range delta are ignored.
func (c *Collector) CollectDeltas(ctx context.Context, symbols []string, window time.Duration) (map[string]float64, error) {
	if err := c.session.Subscribe(symbols); err != nil {
		return nil, err
	}
	defer c.session.Unsubscribe(symbols)

	subscribed := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		subscribed[symbol] = true
	}

	deltas := make(map[string]float64)
	timer := time.NewTimer(window)
	defer timer.Stop()

	events := c.session.Events()
	for {
		select {
		case ev := <-events:
			if ev.Type != feed.EventTypeGreeks || !subscribed[ev.Symbol] {
				continue
			}
			if ev.Delta == nil || *ev.Delta < -1 || *ev.Delta > 1 {
				continue
			}
			deltas[ev.Symbol] = *ev.Delta
		case <-timer.C:
			phaseLog := logging.WithPhase(c.log, "phase1")
			phaseLog.Debug().
				Int("subscribed", len(symbols)).
				Int("observed", len(deltas)).
				Msg("Delta collection window elapsed")
			return deltas, ctx.Err()
		}
	}
}

// CollectOpenInterest is Phase 2: subscribe only the balanced set, record
// open interest per symbol from summary events for the full window, then
// aggregate per side. Fails with a PartialOiError when either side's sum is
// zero at window close.
func (c *Collector) CollectOpenInterest(ctx context.Context, calls, puts []models.CandidateStrike, window time.Duration) (callAgg, putAgg SideAggregate, err error) {
	deltas := make(map[string]float64, len(calls)+len(puts))
	symbols := make([]string, 0, len(calls)+len(puts))
	for _, candidate := range calls {
		deltas[candidate.Symbol] = candidate.Delta
		symbols = append(symbols, candidate.Symbol)
	}
	for _, candidate := range puts {
		deltas[candidate.Symbol] = candidate.Delta
		symbols = append(symbols, candidate.Symbol)
	}

	if err := c.session.Subscribe(symbols); err != nil {
		return SideAggregate{}, SideAggregate{}, err
	}
	defer c.session.Unsubscribe(symbols)

	openInterest := make(map[string]int64)
	timer := time.NewTimer(window)
	defer timer.Stop()

	events := c.session.Events()
	for {
		select {
		case ev := <-events:
			if ev.Type != feed.EventTypeSummary || ev.OpenInterest == nil {
				continue
			}
			if _, ok := deltas[ev.Symbol]; !ok {
				continue
			}
			openInterest[ev.Symbol] = *ev.OpenInterest
		case <-timer.C:
			callAgg, putAgg = aggregateSides(deltas, openInterest)
			if callAgg.Oi == 0 || putAgg.Oi == 0 {
				phaseLog := logging.WithPhase(c.log, "phase2")
				phaseLog.Warn().
					Int("calls_with_data", callAgg.Count).
					Int("puts_with_data", putAgg.Count).
					Msg("Open interest window elapsed without data on both sides")
				return SideAggregate{}, SideAggregate{}, errors.NewPartialOiError(callAgg.Count, putAgg.Count)
			}
			return callAgg, putAgg, ctx.Err()
		}
	}
}

// aggregateSides partitions observed open interest by the delta bands and
// sums each side. Contracts with zero or unreported open interest are
// excluded.
func aggregateSides(deltas map[string]float64, openInterest map[string]int64) (callAgg, putAgg SideAggregate) {
	for symbol, oi := range openInterest {
		if oi <= 0 {
			continue
		}
		delta, ok := deltas[symbol]
		if !ok {
			continue
		}
		switch {
		case delta >= MinDelta && delta <= MaxDelta:
			callAgg.Oi += oi
			callAgg.WeightedDelta += delta * float64(oi)
			callAgg.Count++
		case delta >= -MaxDelta && delta <= -MinDelta:
			putAgg.Oi += oi
			putAgg.WeightedDelta += delta * float64(oi)
			putAgg.Count++
		}
	}
	return callAgg, putAgg
}
