package feed

import (
	"encoding/json"
	"testing"
)

func TestParseFeedDataGreeks(t *testing.T) {
	payload := json.RawMessage(`[
		"Greeks",
		["Greeks", ".SPY C450", 0.22, "Greeks", ".SPY P440", -0.18]
	]`)

	events := parseFeedData(payload)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.Type != EventTypeGreeks || first.Symbol != ".SPY C450" {
		t.Errorf("first event wrong: %+v", first)
	}
	if first.Delta == nil || *first.Delta != 0.22 {
		t.Errorf("expected delta 0.22, got %v", first.Delta)
	}

	second := events[1]
	if second.Symbol != ".SPY P440" || second.Delta == nil || *second.Delta != -0.18 {
		t.Errorf("second event wrong: %+v", second)
	}
}

func TestParseFeedDataSummary(t *testing.T) {
	payload := json.RawMessage(`[
		"Summary",
		["Summary", ".SPY C450", 12345]
	]`)

	events := parseFeedData(payload)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != EventTypeSummary || ev.OpenInterest == nil || *ev.OpenInterest != 12345 {
		t.Errorf("summary event wrong: %+v", ev)
	}
}

func TestParseFeedDataMixedBatch(t *testing.T) {
	payload := json.RawMessage(`[
		"Greeks", ["Greeks", ".SPY C450", 0.22],
		"Summary", ["Summary", ".SPY C450", 100]
	]`)

	events := parseFeedData(payload)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventTypeGreeks || events[1].Type != EventTypeSummary {
		t.Errorf("event types wrong: %s %s", events[0].Type, events[1].Type)
	}
}

func TestParseFeedDataMissingValues(t *testing.T) {
	// The upstream encodes absent numerics as the string "NaN".
	payload := json.RawMessage(`[
		"Greeks",
		["Greeks", ".SPY C450", "NaN"]
	]`)

	events := parseFeedData(payload)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Delta != nil {
		t.Errorf("expected nil delta for NaN, got %v", *events[0].Delta)
	}
}

func TestParseFeedDataUnknownType(t *testing.T) {
	payload := json.RawMessage(`[
		"Candle", ["Candle", ".SPY C450", 1, 2, 3],
		"Greeks", ["Greeks", ".SPY C450", 0.25]
	]`)

	events := parseFeedData(payload)
	if len(events) != 1 || events[0].Type != EventTypeGreeks {
		t.Errorf("unknown event types should be skipped, got %+v", events)
	}
}

func TestParseFeedDataMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{"type": "object"}`,
		`["Greeks"]`,
		`[]`,
	}
	for _, payload := range cases {
		if events := parseFeedData(json.RawMessage(payload)); len(events) != 0 {
			t.Errorf("payload %q produced events: %+v", payload, events)
		}
	}
}

func TestNumeric(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want *float64
	}{
		{"float", 0.25, floatRef(0.25)},
		{"numeric string", "0.5", floatRef(0.5)},
		{"NaN string", "NaN", nil},
		{"Infinity string", "Infinity", nil},
		{"negative Infinity", "-Infinity", nil},
		{"garbage string", "abc", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := numeric(tc.in)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("numeric(%v): got %v, want %v", tc.in, got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Errorf("numeric(%v) = %v, want %v", tc.in, *got, *tc.want)
			}
		})
	}
}

func floatRef(v float64) *float64 { return &v }

func TestPublishDropsWhenFull(t *testing.T) {
	s := NewDXLinkSession(DXLinkConfig{BufferSize: 2}, nil)

	for i := 0; i < 5; i++ {
		s.publish(Event{Type: EventTypeGreeks, Symbol: ".SPY C450"})
	}

	if got := s.Dropped(); got != 3 {
		t.Errorf("expected 3 dropped events, got %d", got)
	}
	if len(s.events) != 2 {
		t.Errorf("expected 2 buffered events, got %d", len(s.events))
	}
}

func TestSubscribeWhenDisconnected(t *testing.T) {
	s := NewDXLinkSession(DXLinkConfig{}, nil)

	err := s.Subscribe([]string{".SPY C450"})
	if err == nil {
		t.Fatal("expected an error when not connected")
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	s := NewDXLinkSession(DXLinkConfig{}, nil)
	if err := s.Disconnect(); err != nil {
		t.Errorf("disconnect on a fresh session failed: %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Errorf("second disconnect failed: %v", err)
	}
	if s.IsConnected() {
		t.Error("session reports connected after disconnect")
	}
}
