package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEpochStrings(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected time.Time
	}{
		{
			name:     "ten digits are seconds",
			raw:      "1609459200",
			expected: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "thirteen digits are milliseconds",
			raw:      "1609459200123",
			expected: time.Date(2021, 1, 1, 0, 0, 0, 123000000, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.raw)
			require.True(t, ok)
			assert.True(t, got.Equal(tc.expected), "got %v", got)
		})
	}
}

func TestParseLocalClock(t *testing.T) {
	got, ok := Parse("2024-01-15 15:42:00")
	require.True(t, ok)

	// Wall-clock components must survive untouched; a UTC round trip
	// would shift them by the local offset.
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 15, got.Hour())
	assert.Equal(t, 42, got.Minute())
	assert.Equal(t, time.Local, got.Location())
}

func TestParseLocalClockVariants(t *testing.T) {
	for _, raw := range []string{
		"2024-01-15 15:42",
		"2024-01-15 15:42:07",
		"2024-01-15 15:42:07.123456",
		"2024-01-15T15:42:07",
	} {
		t.Run(raw, func(t *testing.T) {
			got, ok := Parse(raw)
			require.True(t, ok)
			assert.Equal(t, 15, got.Hour())
			assert.Equal(t, 42, got.Minute())
		})
	}
}

func TestParseISOWithZone(t *testing.T) {
	got, ok := Parse("2021-06-01T10:30:00Z")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2021, 6, 1, 10, 30, 0, 0, time.UTC)))

	got, ok = Parse("2021-06-01T10:30:00+05:30")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2021, 6, 1, 5, 0, 0, 0, time.UTC)))
}

func TestParseIsTotal(t *testing.T) {
	for _, raw := range []string{
		"", "   ", "not a date", "12-34", "temp-abc", "0x1234",
	} {
		t.Run("raw="+raw, func(t *testing.T) {
			got, ok := Parse(raw)
			assert.False(t, ok)
			assert.True(t, got.IsZero())
		})
	}
}

func TestParseUnix(t *testing.T) {
	tests := []struct {
		name     string
		n        int64
		ok       bool
		expected time.Time
	}{
		{"seconds", 1609459200, true, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"milliseconds", 1609459200123, true, time.Date(2021, 1, 1, 0, 0, 0, 123000000, time.UTC)},
		{"zero", 0, false, time.Time{}},
		{"negative", -5, false, time.Time{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseUnix(tc.n)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, got.Equal(tc.expected))
			}
		})
	}
}

func TestClockAndDate(t *testing.T) {
	assert.Equal(t, "3:42 PM", Clock("2024-01-15 15:42:00"))
	assert.Equal(t, "15 Jan 2024", Date("2024-01-15 15:42:00"))
	assert.Equal(t, "", Clock("garbage"))
	assert.Equal(t, "", Date(""))
}

func TestLabelSameDayUsesClock(t *testing.T) {
	now := time.Now()
	today := now.Format("2006-01-02") + " 09:05:00"
	assert.Equal(t, "9:05 AM", Label(today))
	assert.Equal(t, "15 Jan 2021", Label("2021-01-15 09:05:00"))
	assert.Equal(t, "", Label("nope"))
}
