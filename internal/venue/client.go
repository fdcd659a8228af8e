// Package venue provides access to the options venue REST API.
package venue

import "context"

// Client defines the venue operations the skew engine depends on.
type Client interface {
	// Authenticate establishes a session with the venue. It is idempotent:
	// an already-established session is reused.
	Authenticate(ctx context.Context) error
	IsAuthenticated() bool

	// FetchChainMetadata fetches the nested option chain for a symbol.
	// For futures, rootOrSymbol is the product root (without contract
	// suffix) and the futures chain endpoint is used.
	FetchChainMetadata(ctx context.Context, rootOrSymbol string, futures bool) (*NestedChain, error)

	// QuoteToken returns the streamer authorization token and endpoint for
	// the live data feed.
	QuoteToken(ctx context.Context) (*QuoteToken, error)
}

// NestedChain is the venue's nested option chain: expirations, each carrying
// its strikes with per-side streamer symbols. Expirations and strikes keep
// the venue's ordering.
type NestedChain struct {
	Expirations []Expiration
}

// Expiration is a single expiration of a nested chain.
type Expiration struct {
	ExpirationType   string  `json:"expiration-type"`
	ExpirationDate   string  `json:"expiration-date"`
	DaysToExpiration int     `json:"days-to-expiration"`
	Strikes          []Strike `json:"strikes"`
}

// Strike carries the streamer symbols for one strike price.
type Strike struct {
	StrikePrice        string `json:"strike-price"`
	CallStreamerSymbol string `json:"call-streamer-symbol"`
	PutStreamerSymbol  string `json:"put-streamer-symbol"`
}

// QuoteToken is the credential handed to the live feed session.
type QuoteToken struct {
	Token string `json:"token"`
	URL   string `json:"dxlink-url"`
}
