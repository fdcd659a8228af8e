// Package utils provides small shared formatting helpers.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	negative := n < 0
	if negative {
		n = -n
	}

	digits := fmt.Sprintf("%d", n)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	result := strings.Join(groups, ",")
	if negative {
		result = "-" + result
	}
	return result
}

// FormatDate renders a date in the venue's wire layout.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatAge renders how long ago a timestamp was, coarsely.
func FormatAge(t time.Time, now time.Time) string {
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%.1fh ago", age.Hours())
	default:
		return fmt.Sprintf("%.1fd ago", age.Hours()/24)
	}
}
