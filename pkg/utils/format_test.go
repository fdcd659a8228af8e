package utils

import (
	"testing"
	"time"
)

func TestFormatCount(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
		{-54321, "-54,321"},
	}
	for _, tc := range cases {
		if got := FormatCount(tc.in); got != tc.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "30s ago"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3.0h ago"},
		{48 * time.Hour, "2.0d ago"},
	}
	for _, tc := range cases {
		if got := FormatAge(now.Add(-tc.ago), now); got != tc.want {
			t.Errorf("FormatAge(-%v) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}
