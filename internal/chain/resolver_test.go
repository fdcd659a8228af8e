package chain

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"optionskew/internal/errors"
	"optionskew/internal/venue"
)

func expiration(expType string, dte int, date string) venue.Expiration {
	return venue.Expiration{
		ExpirationType:   expType,
		DaysToExpiration: dte,
		ExpirationDate:   date,
	}
}

func TestSelectExpiration(t *testing.T) {
	expirations := []venue.Expiration{
		expiration("Regular", 10, "2026-09-09"),
		expiration("Regular", 25, "2026-09-24"),
		expiration("Regular", 32, "2026-10-01"),
		expiration("Regular", 40, "2026-10-09"),
	}

	selected, err := SelectExpiration(expirations, 30)
	if err != nil {
		t.Fatalf("SelectExpiration failed: %v", err)
	}
	if selected.DaysToExpiration != 32 {
		t.Errorf("expected 32 DTE, got %d", selected.DaysToExpiration)
	}
}

func TestSelectExpirationSkipsDisallowedTypes(t *testing.T) {
	// The weekly sits exactly on target but is not an eligible category.
	expirations := []venue.Expiration{
		expiration("Weekly", 30, "2026-09-29"),
		expiration("Quarterly", 29, "2026-09-28"),
		expiration("Regular", 45, "2026-10-14"),
		expiration("End-of-Month", 20, "2026-09-19"),
	}

	selected, err := SelectExpiration(expirations, 30)
	if err != nil {
		t.Fatalf("SelectExpiration failed: %v", err)
	}
	if selected.DaysToExpiration != 20 {
		t.Errorf("expected the 20 DTE end-of-month, got %d DTE %s", selected.DaysToExpiration, selected.ExpirationType)
	}
}

func TestSelectExpirationSkipsExpired(t *testing.T) {
	expirations := []venue.Expiration{
		expiration("Regular", -1, "2026-08-29"),
		expiration("Regular", 60, "2026-10-29"),
	}

	selected, err := SelectExpiration(expirations, 30)
	if err != nil {
		t.Fatalf("SelectExpiration failed: %v", err)
	}
	if selected.DaysToExpiration != 60 {
		t.Errorf("expected 60 DTE, got %d", selected.DaysToExpiration)
	}
}

func TestSelectExpirationTieKeepsEarlier(t *testing.T) {
	expirations := []venue.Expiration{
		expiration("Regular", 28, "2026-09-27"),
		expiration("Regular", 32, "2026-10-01"),
	}

	selected, err := SelectExpiration(expirations, 30)
	if err != nil {
		t.Fatalf("SelectExpiration failed: %v", err)
	}
	if selected.DaysToExpiration != 28 {
		t.Errorf("expected tie to keep the first encountered (28), got %d", selected.DaysToExpiration)
	}
}

func TestSelectExpirationNoneEligible(t *testing.T) {
	expirations := []venue.Expiration{
		expiration("Weekly", 30, "2026-09-29"),
		expiration("Regular", -5, "2026-08-25"),
	}

	_, err := SelectExpiration(expirations, 30)
	if !errors.Is(err, errors.ErrNoExpirationFound) {
		t.Errorf("expected ErrNoExpirationFound, got %v", err)
	}
}

// chainVenue records what the resolver asks for.
type chainVenue struct {
	chain      *venue.NestedChain
	err        error
	gotSymbol  string
	gotFutures bool
}

func (c *chainVenue) Authenticate(ctx context.Context) error { return nil }
func (c *chainVenue) IsAuthenticated() bool                  { return true }

func (c *chainVenue) FetchChainMetadata(ctx context.Context, rootOrSymbol string, futures bool) (*venue.NestedChain, error) {
	c.gotSymbol = rootOrSymbol
	c.gotFutures = futures
	return c.chain, c.err
}

func (c *chainVenue) QuoteToken(ctx context.Context) (*venue.QuoteToken, error) {
	return &venue.QuoteToken{Token: "tok"}, nil
}

func TestResolveFlattensStrikes(t *testing.T) {
	client := &chainVenue{
		chain: &venue.NestedChain{
			Expirations: []venue.Expiration{
				{
					ExpirationType:   "Regular",
					ExpirationDate:   "2026-10-16",
					DaysToExpiration: 32,
					Strikes: []venue.Strike{
						{StrikePrice: "440.0", CallStreamerSymbol: ".SPY C440", PutStreamerSymbol: ".SPY P440"},
						{StrikePrice: "450.0", CallStreamerSymbol: ".SPY C450", PutStreamerSymbol: ".SPY P450"},
						{StrikePrice: "460.0", CallStreamerSymbol: "", PutStreamerSymbol: ".SPY P460"},
					},
				},
			},
		},
	}

	resolver := NewResolver(client, zerolog.Nop())
	result, err := resolver.Resolve(context.Background(), "SPY")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := []string{".SPY C440", ".SPY P440", ".SPY C450", ".SPY P450", ".SPY P460"}
	if len(result.StreamSymbols) != len(want) {
		t.Fatalf("expected %d stream symbols, got %d", len(want), len(result.StreamSymbols))
	}
	for i, symbol := range want {
		if result.StreamSymbols[i] != symbol {
			t.Errorf("stream symbol %d: expected %s, got %s", i, symbol, result.StreamSymbols[i])
		}
	}
	if result.DTE != 32 {
		t.Errorf("expected 32 DTE, got %d", result.DTE)
	}
	if result.ExpirationDate.Format("2006-01-02") != "2026-10-16" {
		t.Errorf("expiration date not parsed: %v", result.ExpirationDate)
	}
	if client.gotFutures {
		t.Error("equity lookup should not use the futures endpoint")
	}
}

func TestResolveFuturesContractUsesRoot(t *testing.T) {
	client := &chainVenue{
		chain: &venue.NestedChain{
			Expirations: []venue.Expiration{
				{
					ExpirationType:   "Regular",
					ExpirationDate:   "2026-09-25",
					DaysToExpiration: 26,
					Strikes: []venue.Strike{
						{StrikePrice: "5000.0", CallStreamerSymbol: "./ESZ5 C5000", PutStreamerSymbol: "./ESZ5 P5000"},
					},
				},
			},
		},
	}

	resolver := NewResolver(client, zerolog.Nop())
	if _, err := resolver.Resolve(context.Background(), "/ESZ5"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if client.gotSymbol != "ES" {
		t.Errorf("expected root ES lookup, got %q", client.gotSymbol)
	}
	if !client.gotFutures {
		t.Error("futures lookup should use the futures endpoint")
	}
}

func TestResolveEmptyChain(t *testing.T) {
	client := &chainVenue{chain: &venue.NestedChain{}}
	resolver := NewResolver(client, zerolog.Nop())

	_, err := resolver.Resolve(context.Background(), "SPY")
	if !errors.Is(err, errors.ErrChainNotFound) {
		t.Errorf("expected ErrChainNotFound, got %v", err)
	}
}
