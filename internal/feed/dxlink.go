// Package feed provides the live market-data feed session.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"optionskew/internal/errors"
	"optionskew/internal/venue"
)

// TokenFunc supplies the streamer token and endpoint, typically
// venue.Client.QuoteToken.
type TokenFunc func(ctx context.Context) (*venue.QuoteToken, error)

// DXLinkConfig holds configuration for the DXLink session.
type DXLinkConfig struct {
	// URL overrides the endpoint returned by the token source.
	URL              string
	BufferSize       int
	HandshakeTimeout time.Duration
	Logger           zerolog.Logger
}

// feedChannel is the DXLink channel number used for the FEED service.
const feedChannel = 1

// eventFields lists the compact-format fields requested per event type via
// FEED_SETUP. Parsing depends on this exact order.
var eventFields = map[EventType][]string{
	EventTypeGreeks:  {"eventType", "eventSymbol", "delta"},
	EventTypeSummary: {"eventType", "eventSymbol", "openInterest"},
	EventTypeQuote:   {"eventType", "eventSymbol", "bidPrice", "askPrice"},
	EventTypeTrade:   {"eventType", "eventSymbol", "price"},
}

// DXLinkSession implements Session over the DXLink websocket protocol.
type DXLinkSession struct {
	cfg    DXLinkConfig
	tokens TokenFunc
	log    zerolog.Logger

	conn       *websocket.Conn
	events     chan Event
	subscribed map[string]bool
	connected  bool
	dropped    uint64

	mu      sync.RWMutex
	writeMu sync.Mutex // Protects websocket writes
}

// NewDXLinkSession creates a new DXLink feed session.
func NewDXLinkSession(cfg DXLinkConfig, tokens TokenFunc) *DXLinkSession {
	bufferSize := cfg.BufferSize
	if bufferSize == 0 {
		bufferSize = 1000
	}
	handshakeTimeout := cfg.HandshakeTimeout
	if handshakeTimeout == 0 {
		handshakeTimeout = 15 * time.Second
	}
	cfg.BufferSize = bufferSize
	cfg.HandshakeTimeout = handshakeTimeout

	return &DXLinkSession{
		cfg:        cfg,
		tokens:     tokens,
		log:        cfg.Logger,
		events:     make(chan Event, bufferSize),
		subscribed: make(map[string]bool),
	}
}

// wireMessage is the generic DXLink frame.
type wireMessage struct {
	Type    string          `json:"type"`
	Channel int             `json:"channel"`
	State   string          `json:"state,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Connect dials the streamer and performs the SETUP / AUTH / CHANNEL_REQUEST
// / FEED_SETUP handshake. Idempotent: returns nil when already connected.
func (s *DXLinkSession) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	token, err := s.tokens(ctx)
	if err != nil {
		return err
	}

	endpoint := s.cfg.URL
	if endpoint == "" {
		endpoint = token.URL
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return errors.NewUpstreamError(endpoint, 0, err)
	}

	if err := s.handshake(conn, token.Token); err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.subscribed = make(map[string]bool)
	s.mu.Unlock()

	go s.readLoop(conn)

	s.log.Debug().Str("endpoint", endpoint).Msg("Feed session connected")
	return nil
}

// handshake drives the connection to an open FEED channel. Runs before the
// read loop starts, so it owns the connection exclusively.
func (s *DXLinkSession) handshake(conn *websocket.Conn, token string) error {
	deadline := time.Now().Add(s.cfg.HandshakeTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return err
	}

	setup := map[string]interface{}{
		"type":                   "SETUP",
		"channel":                0,
		"version":                "0.1-go/1.0.0",
		"keepaliveTimeout":       60,
		"acceptKeepaliveTimeout": 60,
	}
	if err := conn.WriteJSON(setup); err != nil {
		return errors.NewUpstreamError("SETUP", 0, err)
	}

	for {
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return errors.NewUpstreamError("handshake", 0, err)
		}

		switch msg.Type {
		case "AUTH_STATE":
			if msg.State == "AUTHORIZED" {
				request := map[string]interface{}{
					"type":       "CHANNEL_REQUEST",
					"channel":    feedChannel,
					"service":    "FEED",
					"parameters": map[string]string{"contract": "AUTO"},
				}
				if err := conn.WriteJSON(request); err != nil {
					return errors.NewUpstreamError("CHANNEL_REQUEST", 0, err)
				}
				continue
			}
			auth := map[string]interface{}{
				"type":    "AUTH",
				"channel": 0,
				"token":   token,
			}
			if err := conn.WriteJSON(auth); err != nil {
				return errors.NewUpstreamError("AUTH", 0, err)
			}

		case "CHANNEL_OPENED":
			fields := make(map[string][]string, len(eventFields))
			for eventType, list := range eventFields {
				fields[string(eventType)] = list
			}
			feedSetup := map[string]interface{}{
				"type":                    "FEED_SETUP",
				"channel":                 feedChannel,
				"acceptAggregationPeriod": 0.5,
				"acceptDataFormat":        "COMPACT",
				"acceptEventFields":       fields,
			}
			if err := conn.WriteJSON(feedSetup); err != nil {
				return errors.NewUpstreamError("FEED_SETUP", 0, err)
			}
			return conn.SetReadDeadline(time.Time{})

		case "ERROR":
			return errors.NewUpstreamError("handshake", 0, fmt.Errorf("streamer error: %s", string(msg.Data)))
		}
	}
}

// readLoop decodes inbound frames and publishes feed events until the
// connection drops. There is no reconnect: a lost connection surfaces as
// ErrConnectionLost on the next subscribe.
func (s *DXLinkSession) readLoop(conn *websocket.Conn) {
	for {
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.mu.Lock()
			wasConnected := s.connected && s.conn == conn
			if wasConnected {
				s.connected = false
			}
			s.mu.Unlock()
			if wasConnected {
				s.log.Warn().Err(err).Msg("Feed connection lost")
			}
			return
		}

		switch msg.Type {
		case "FEED_DATA":
			if msg.Channel != feedChannel {
				continue
			}
			for _, ev := range parseFeedData(msg.Data) {
				s.publish(ev)
			}
		case "KEEPALIVE":
			s.writeMu.Lock()
			conn.WriteJSON(map[string]interface{}{"type": "KEEPALIVE", "channel": 0})
			s.writeMu.Unlock()
		case "ERROR":
			s.log.Warn().Str("data", string(msg.Data)).Msg("Streamer error frame")
		}
	}
}

// publish is non-blocking: when the buffer is full the event is dropped.
func (s *DXLinkSession) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// parseFeedData decodes a COMPACT FEED_DATA payload: an array alternating an
// event type name with a flat value array holding that type's fields for one
// or more events.
func parseFeedData(data json.RawMessage) []Event {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	var events []Event
	for i := 0; i+1 < len(raw); i += 2 {
		var name string
		if err := json.Unmarshal(raw[i], &name); err != nil {
			continue
		}
		fields, ok := eventFields[EventType(name)]
		if !ok {
			continue
		}

		var values []interface{}
		if err := json.Unmarshal(raw[i+1], &values); err != nil {
			continue
		}

		stride := len(fields)
		for off := 0; off+stride <= len(values); off += stride {
			events = append(events, buildEvent(EventType(name), fields, values[off:off+stride]))
		}
	}
	return events
}

// buildEvent maps one compact value chunk onto an Event.
func buildEvent(eventType EventType, fields []string, values []interface{}) Event {
	ev := Event{Type: eventType}
	for i, field := range fields {
		switch field {
		case "eventSymbol":
			if sym, ok := values[i].(string); ok {
				ev.Symbol = sym
			}
		case "delta":
			ev.Delta = numeric(values[i])
		case "openInterest":
			if n := numeric(values[i]); n != nil {
				oi := int64(*n)
				ev.OpenInterest = &oi
			}
		case "bidPrice":
			ev.BidPrice = numeric(values[i])
		case "askPrice":
			ev.AskPrice = numeric(values[i])
		case "price":
			ev.Price = numeric(values[i])
		}
	}
	return ev
}

// numeric extracts a finite float from a compact value. The upstream encodes
// missing values as the strings "NaN" and "Infinity".
func numeric(v interface{}) *float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Subscribe adds Greeks and Summary subscriptions for the given streamer
// symbols. Already-subscribed symbols are skipped.
func (s *DXLinkSession) Subscribe(symbols []string) error {
	return s.updateSubscription(symbols, true)
}

// Unsubscribe removes subscriptions for the given streamer symbols.
func (s *DXLinkSession) Unsubscribe(symbols []string) error {
	return s.updateSubscription(symbols, false)
}

func (s *DXLinkSession) updateSubscription(symbols []string, add bool) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return errors.ErrConnectionLost
	}
	conn := s.conn

	pending := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if s.subscribed[symbol] == add {
			continue
		}
		s.subscribed[symbol] = add
		if !add {
			delete(s.subscribed, symbol)
		}
		pending = append(pending, symbol)
	}
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	entries := make([]map[string]string, 0, 2*len(pending))
	for _, symbol := range pending {
		entries = append(entries,
			map[string]string{"type": string(EventTypeGreeks), "symbol": symbol},
			map[string]string{"type": string(EventTypeSummary), "symbol": symbol},
		)
	}

	key := "add"
	if !add {
		key = "remove"
	}
	msg := map[string]interface{}{
		"type":    "FEED_SUBSCRIPTION",
		"channel": feedChannel,
		key:       entries,
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		return errors.NewUpstreamError("FEED_SUBSCRIPTION", 0, err)
	}
	return nil
}

// Events returns the feed event channel.
func (s *DXLinkSession) Events() <-chan Event {
	return s.events
}

// IsConnected returns whether the session is connected.
func (s *DXLinkSession) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Disconnect closes the websocket connection. Idempotent.
func (s *DXLinkSession) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connected = false
	s.subscribed = make(map[string]bool)
	return nil
}

// Dropped returns the number of events discarded because the buffer was full.
func (s *DXLinkSession) Dropped() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// Ensure DXLinkSession implements Session interface
var _ Session = (*DXLinkSession)(nil)
