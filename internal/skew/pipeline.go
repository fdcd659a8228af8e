package skew

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"optionskew/internal/cache"
	"optionskew/internal/chain"
	"optionskew/internal/errors"
	"optionskew/internal/feed"
	"optionskew/internal/logging"
	"optionskew/internal/models"
	"optionskew/internal/store"
	"optionskew/internal/venue"
)

// Config holds the engine's pipeline tuning.
type Config struct {
	TargetDTE    int
	Phase1Window time.Duration
	Phase2Window time.Duration
}

// DefaultConfig returns the standard pipeline tuning.
func DefaultConfig() Config {
	return Config{
		TargetDTE:    chain.DefaultTargetDTE,
		Phase1Window: DefaultPhase1Window,
		Phase2Window: DefaultPhase2Window,
	}
}

// Engine runs skew computations over one shared feed session. The feed mutex
// serializes the streaming phases: two computations never collect events at
// the same time.
type Engine struct {
	venue     venue.Client
	session   feed.Session
	resolver  *chain.Resolver
	collector *Collector
	cache     *cache.Cache
	history   store.HistoryStore
	pricer    Pricer
	cfg       Config
	log       zerolog.Logger
	feedMu    sync.Mutex
}

// NewEngine wires a computation engine. The history store may be nil; the
// pricer defaults to none.
func NewEngine(venueClient venue.Client, session feed.Session, resultCache *cache.Cache, history store.HistoryStore, logger zerolog.Logger, cfg Config) *Engine {
	if cfg.TargetDTE <= 0 {
		cfg.TargetDTE = chain.DefaultTargetDTE
	}
	if cfg.Phase1Window <= 0 {
		cfg.Phase1Window = DefaultPhase1Window
	}
	if cfg.Phase2Window <= 0 {
		cfg.Phase2Window = DefaultPhase2Window
	}
	return &Engine{
		venue:     venueClient,
		session:   session,
		resolver:  chain.NewResolverWithTarget(venueClient, logger, cfg.TargetDTE),
		collector: NewCollector(session, logger),
		cache:     resultCache,
		history:   history,
		cfg:       cfg,
		log:       logger,
	}
}

// SetPricer installs the optional pricing hook.
func (e *Engine) SetPricer(p Pricer) {
	e.pricer = p
}

// Close releases the feed connection.
func (e *Engine) Close() error {
	return e.session.Disconnect()
}

// Compute runs the full pipeline for one symbol and streams progress events.
// The channel is closed after the terminal result or error event. Cancelling
// the context stops the pipeline between stages; an in-flight collection
// window still runs out first.
func (e *Engine) Compute(ctx context.Context, symbol string) <-chan Event {
	out := make(chan Event, 8)

	go func() {
		defer close(out)

		normalized := chain.Normalize(symbol)
		emit := func(ev Event) {
			ev.Symbol = normalized
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}

		result, _, err := e.compute(ctx, symbol, func(stage EventType, chainRes *models.ChainResult) {
			ev := Event{Type: stage}
			if stage == EventChain {
				ev.Chain = chainRes
			}
			emit(ev)
		})
		if err != nil {
			emit(Event{Type: EventError, Error: err.Error()})
			return
		}
		emit(Event{Type: EventResult, Result: result})
	}()

	return out
}

// compute is the shared pipeline body: cache check, session setup, chain
// resolution, the two collection phases, and result assembly. onStage is
// called as each stage begins, before its work runs, except EventCached and
// EventResult which fire on completion.
func (e *Engine) compute(ctx context.Context, symbol string, onStage func(EventType, *models.ChainResult)) (*models.SkewResult, bool, error) {
	started := time.Now()
	normalized := chain.Normalize(symbol)
	log := logging.WithSymbol(e.log, normalized)

	if result, ok := e.cache.Get(normalized); ok {
		log.Debug().Msg("Serving cached result")
		onStage(EventCached, nil)
		return result, true, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := e.venue.Authenticate(ctx); err != nil {
		return nil, false, err
	}
	if err := e.session.Connect(ctx); err != nil {
		return nil, false, err
	}
	onStage(EventConnected, nil)

	// One computation owns the feed at a time.
	e.feedMu.Lock()
	defer e.feedMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	// Resolve sees the raw symbol: normalization strips the futures slash
	// that classification depends on.
	chainRes, err := e.resolver.Resolve(ctx, symbol)
	if err != nil {
		return nil, false, err
	}
	onStage(EventChain, chainRes)

	onStage(EventPhase1, chainRes)
	deltas, err := e.collector.CollectDeltas(ctx, chainRes.StreamSymbols, e.cfg.Phase1Window)
	if err != nil {
		return nil, false, err
	}

	calls, puts, err := SelectStrikes(deltas)
	if err != nil {
		return nil, false, err
	}
	log.Debug().
		Int("calls", len(calls)).
		Int("puts", len(puts)).
		Msg("Balanced strike set selected")

	onStage(EventPhase2, chainRes)
	callAgg, putAgg, err := e.collector.CollectOpenInterest(ctx, calls, puts, e.cfg.Phase2Window)
	if err != nil {
		return nil, false, err
	}

	result := ComputeSkew(normalized, chainRes, callAgg, putAgg, time.Now())

	if e.pricer != nil {
		if perr := e.pricer.Price(ctx, normalized, result); perr != nil {
			log.Warn().Err(perr).Msg("Pricing enrichment failed")
		}
	}

	e.cache.Set(normalized, result)

	if e.history != nil {
		if serr := e.history.SaveSnapshot(ctx, normalized, result); serr != nil {
			log.Error().Err(errors.Wrap(serr, "snapshot persistence failed")).
				Msg("Snapshot not persisted, result unaffected")
		}
	}

	logging.LogComputation(log, normalized, result.Skew, result.DTE, time.Since(started))

	return result, false, nil
}
