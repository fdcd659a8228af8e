package chain

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"spy", "SPY"},
		{"  SPY  ", "SPY"},
		{"/ES", "ES"},
		{"/esz5", "ESZ5"},
		{"QQQ", "QQQ"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want SymbolKind
	}{
		{"SPY", KindEquity},
		{"spx", KindEquity},
		{"SPX4", KindEquity},
		{"/ES", KindFuturesRoot},
		{"/CL", KindFuturesRoot},
		{"/ESZ5", KindFuturesContract},
		{"/esh26", KindFuturesContract},
		{"/NG", KindFuturesRoot},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestRoot(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/ESZ5", "ES"},
		{"/ESH26", "ES"},
		{"/ES", "ES"},
		{"/NGX5", "NG"},
		{"SPY", "SPY"},
	}
	for _, tc := range cases {
		if got := Root(tc.in); got != tc.want {
			t.Errorf("Root(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
