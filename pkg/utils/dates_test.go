package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindowUTC(t *testing.T) {
	start, end := DayWindow(time.Date(2025, 1, 18, 15, 30, 0, 0, time.UTC), time.UTC)

	assert.Equal(t, time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 18, 23, 59, 59, 999_000_000, time.UTC), end)
}

func TestDayWindowUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 17th is already the 18th in IST.
	start, _ := DayWindow(time.Date(2025, 1, 17, 20, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, 18, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, loc, start.Location())
}

func TestDayWindowNilLocation(t *testing.T) {
	start, end := DayWindow(time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC), nil)
	assert.Equal(t, time.UTC, start.Location())
	assert.True(t, end.After(start))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-18", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-01-18T08:00:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())

	_, err = ParseDate("18/01/2025", time.UTC)
	assert.Error(t, err)

	_, err = ParseDate("  ", time.UTC)
	assert.Error(t, err)
}
