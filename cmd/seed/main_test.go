package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRoutesAreFutureAndWellFormed(t *testing.T) {
	base := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	seen := map[string]bool{}
	for _, r := range sampleRoutes {
		in := r.input(base)
		require.NotNil(t, in.DepartureTime)
		assert.True(t, in.DepartureTime.After(base), r.number)
		assert.True(t, in.ArrivalTime.After(*in.DepartureTime), r.number)
		assert.GreaterOrEqual(t, *in.TotalSeats, 1)
		assert.False(t, seen[r.number], "duplicate route number %s", r.number)
		seen[r.number] = true
	}
}
