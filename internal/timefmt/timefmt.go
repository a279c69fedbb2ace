// Package timefmt normalizes the timestamp shapes the backend emits.
//
// The backend is not consistent: history rows carry "YYYY-MM-DD HH:MM:SS"
// strings without a timezone, realtime events carry ISO strings, and some
// endpoints return bare epoch values. Parse applies one documented
// precedence for all call sites:
//
//  1. digit-only strings are epoch values; 10 digits means seconds,
//     anything else milliseconds
//  2. "YYYY-MM-DD HH:MM[:SS[.ffffff]]" without a zone is wall-clock LOCAL
//     time, parsed from its components, never shifted through UTC
//  3. everything else goes through RFC3339-family parsing, retried with a
//     "Z" suffix when the bare string fails
//
// Parse is total: it never panics and reports unparseable input through
// its second return value.
package timefmt

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var localClockPattern = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(:\d{2}(\.\d{1,6})?)?$`)

var localLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Parse converts a raw backend timestamp string into a time.Time.
func Parse(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}

	if isDigits(trimmed) {
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		if len(trimmed) == 10 {
			return time.Unix(n, 0), true
		}
		return time.UnixMilli(n), true
	}

	if localClockPattern.MatchString(trimmed) {
		normalized := strings.Replace(trimmed, "T", " ", 1)
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, normalized, time.Local); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	if t, ok := parseNative(trimmed); ok {
		return t, true
	}
	return parseNative(trimmed + "Z")
}

// ParseUnix converts a numeric epoch; values below 1e12 are seconds.
func ParseUnix(n int64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	if n < 1e12 {
		return time.Unix(n, 0), true
	}
	return time.UnixMilli(n), true
}

func parseNative(s string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999Z07:00",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Clock renders a parsed timestamp as "3:04 PM", or "" when unparseable.
func Clock(raw string) string {
	t, ok := Parse(raw)
	if !ok {
		return ""
	}
	return t.Format("3:04 PM")
}

// Date renders a parsed timestamp as "02 Jan 2006", or "" when unparseable.
func Date(raw string) string {
	t, ok := Parse(raw)
	if !ok {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// Label picks the clock form for same-day timestamps and the date form
// otherwise, matching how contact rows show recency.
func Label(raw string) string {
	t, ok := Parse(raw)
	if !ok {
		return ""
	}
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("3:04 PM")
	}
	return t.Format("02 Jan 2006")
}
