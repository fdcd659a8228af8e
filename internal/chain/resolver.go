package chain

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"optionskew/internal/errors"
	"optionskew/internal/models"
	"optionskew/internal/venue"
)

// DefaultTargetDTE is the days-to-expiration the resolver steers toward.
const DefaultTargetDTE = 30

// allowedExpirationTypes are the only expiration categories eligible for
// selection. Weekly and quarterly chains are excluded so the metric always
// reads the standard monthly surface.
var allowedExpirationTypes = map[string]bool{
	"end-of-month": true,
	"regular":      true,
}

// Resolver locates the option chain slice a computation runs against.
type Resolver struct {
	venue     venue.Client
	targetDTE int
	log       zerolog.Logger
}

// NewResolver creates a chain resolver with the default DTE target.
func NewResolver(client venue.Client, logger zerolog.Logger) *Resolver {
	return &Resolver{
		venue:     client,
		targetDTE: DefaultTargetDTE,
		log:       logger,
	}
}

// NewResolverWithTarget creates a chain resolver with a custom DTE target.
func NewResolverWithTarget(client venue.Client, logger zerolog.Logger, targetDTE int) *Resolver {
	r := NewResolver(client, logger)
	if targetDTE > 0 {
		r.targetDTE = targetDTE
	}
	return r
}

// Resolve fetches the nested chain for a symbol, picks the expiration whose
// DTE is nearest the target among allowed categories, and flattens its
// strikes into one ordered streamer-symbol sequence.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (*models.ChainResult, error) {
	kind := Classify(symbol)
	futures := kind == KindFuturesRoot || kind == KindFuturesContract
	lookup := symbol
	if futures {
		lookup = Root(symbol)
	}

	raw, err := r.venue.FetchChainMetadata(ctx, lookup, futures)
	if err != nil {
		return nil, err
	}
	if raw == nil || len(raw.Expirations) == 0 {
		return nil, errors.ErrChainNotFound
	}

	selected, err := SelectExpiration(raw.Expirations, r.targetDTE)
	if err != nil {
		return nil, err
	}

	streamSymbols := make([]string, 0, 2*len(selected.Strikes))
	for _, strike := range selected.Strikes {
		if strike.CallStreamerSymbol != "" {
			streamSymbols = append(streamSymbols, strike.CallStreamerSymbol)
		}
		if strike.PutStreamerSymbol != "" {
			streamSymbols = append(streamSymbols, strike.PutStreamerSymbol)
		}
	}
	if len(streamSymbols) == 0 {
		return nil, errors.ErrChainNotFound
	}

	expirationDate, _ := time.Parse("2006-01-02", selected.ExpirationDate)

	r.log.Debug().
		Str("symbol", symbol).
		Str("kind", string(kind)).
		Str("expiration", selected.ExpirationDate).
		Int("dte", selected.DaysToExpiration).
		Int("contracts", len(streamSymbols)).
		Msg("Chain resolved")

	return &models.ChainResult{
		StreamSymbols:  streamSymbols,
		ExpirationDate: expirationDate,
		DTE:            selected.DaysToExpiration,
	}, nil
}

// SelectExpiration picks the allowed expiration with non-negative DTE
// nearest to targetDTE. Ties keep the earlier encounter.
func SelectExpiration(expirations []venue.Expiration, targetDTE int) (*venue.Expiration, error) {
	var best *venue.Expiration
	bestDistance := 0

	for i := range expirations {
		exp := &expirations[i]
		if !allowedExpirationTypes[strings.ToLower(strings.TrimSpace(exp.ExpirationType))] {
			continue
		}
		if exp.DaysToExpiration < 0 {
			continue
		}

		distance := exp.DaysToExpiration - targetDTE
		if distance < 0 {
			distance = -distance
		}
		if best == nil || distance < bestDistance {
			best = exp
			bestDistance = distance
		}
	}

	if best == nil {
		return nil, errors.ErrNoExpirationFound
	}
	return best, nil
}
