// Package venue provides access to the options venue REST API.
package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"optionskew/internal/errors"
	"optionskew/internal/logging"
)

// TastytradeClient implements the Client interface against the tastytrade
// REST API.
type TastytradeClient struct {
	baseURL      string
	login        string
	password     string
	httpClient   *http.Client
	sessionToken string
	mu           sync.RWMutex
	log          zerolog.Logger
}

// TastytradeConfig holds configuration for the tastytrade client.
type TastytradeConfig struct {
	BaseURL  string
	Login    string
	Password string
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// NewTastytradeClient creates a new tastytrade API client.
func NewTastytradeClient(cfg TastytradeConfig) *TastytradeClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &TastytradeClient{
		baseURL:    cfg.BaseURL,
		login:      cfg.Login,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		log:        cfg.Logger,
	}
}

// sessionResponse is the POST /sessions payload.
type sessionResponse struct {
	Data struct {
		SessionToken string `json:"session-token"`
	} `json:"data"`
}

// Authenticate establishes a session with the venue. A cached session token
// is reused; the venue invalidates tokens server-side after 24 h, at which
// point requests fail and a fresh Authenticate is required.
func (c *TastytradeClient) Authenticate(ctx context.Context) error {
	c.mu.RLock()
	token := c.sessionToken
	c.mu.RUnlock()
	if token != "" {
		return nil
	}

	if c.login == "" || c.password == "" {
		return errors.ErrMissingCredentials
	}

	body, err := json.Marshal(map[string]string{
		"login":    c.login,
		"password": c.password,
	})
	if err != nil {
		return err
	}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/sessions", bytes.NewReader(body), &resp); err != nil {
		return err
	}
	if resp.Data.SessionToken == "" {
		return errors.NewUpstreamError("/sessions", 0, fmt.Errorf("empty session token"))
	}

	c.mu.Lock()
	c.sessionToken = resp.Data.SessionToken
	c.mu.Unlock()

	c.log.Debug().Msg("Venue session established")
	return nil
}

// IsAuthenticated returns whether a session token is held.
func (c *TastytradeClient) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionToken != ""
}

// nestedChainResponse covers both the equity and the futures nested chain
// payloads; only one of the two item shapes is populated per response.
type nestedChainResponse struct {
	Data struct {
		Items []struct {
			Expirations  []Expiration `json:"expirations"`
			OptionChains []struct {
				Expirations []Expiration `json:"expirations"`
			} `json:"option-chains"`
		} `json:"items"`
	} `json:"data"`
}

// FetchChainMetadata fetches the nested option chain for a symbol or
// futures root.
func (c *TastytradeClient) FetchChainMetadata(ctx context.Context, rootOrSymbol string, futures bool) (*NestedChain, error) {
	endpoint := fmt.Sprintf("/option-chains/%s/nested", url.PathEscape(rootOrSymbol))
	if futures {
		endpoint = fmt.Sprintf("/futures-option-chains/%s/nested", url.PathEscape(rootOrSymbol))
	}

	var resp nestedChainResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		var ue *errors.UpstreamError
		if errors.As(err, &ue) && ue.Status == http.StatusNotFound {
			return nil, errors.ErrChainNotFound
		}
		return nil, err
	}

	chain := &NestedChain{}
	for _, item := range resp.Data.Items {
		chain.Expirations = append(chain.Expirations, item.Expirations...)
		for _, oc := range item.OptionChains {
			chain.Expirations = append(chain.Expirations, oc.Expirations...)
		}
	}

	if len(chain.Expirations) == 0 {
		return nil, errors.ErrChainNotFound
	}
	return chain, nil
}

// quoteTokenResponse is the GET /api-quote-tokens payload.
type quoteTokenResponse struct {
	Data QuoteToken `json:"data"`
}

// QuoteToken returns the streamer token for the live feed.
func (c *TastytradeClient) QuoteToken(ctx context.Context) (*QuoteToken, error) {
	var resp quoteTokenResponse
	if err := c.do(ctx, http.MethodGet, "/api-quote-tokens", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Token == "" {
		return nil, errors.NewUpstreamError("/api-quote-tokens", 0, fmt.Errorf("empty quote token"))
	}
	return &resp.Data, nil
}

// do performs one API round trip and decodes the JSON response.
func (c *TastytradeClient) do(ctx context.Context, method, endpoint string, body *bytes.Reader, out interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	}
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.mu.RLock()
	if c.sessionToken != "" {
		req.Header.Set("Authorization", c.sessionToken)
	}
	c.mu.RUnlock()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	logging.LogAPICall(c.log, method, endpoint, time.Since(start), err)
	if err != nil {
		return errors.NewUpstreamError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Server-side token invalidation; a fresh Authenticate is needed.
		c.mu.Lock()
		c.sessionToken = ""
		c.mu.Unlock()
		return errors.ErrSessionExpired
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return errors.NewUpstreamError(endpoint, resp.StatusCode, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewUpstreamError(endpoint, 0, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// Ensure TastytradeClient implements Client interface
var _ Client = (*TastytradeClient)(nil)
