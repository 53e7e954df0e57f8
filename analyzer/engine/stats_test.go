package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_PopulationStatistics(t *testing.T) {
	// 0.5s samples: every delta is doubled into a per-second rate
	series := points(0, 1, 0.5, 2, 1.0, 3, 1.5, 4, 2.0, 5)

	s := Summarize(rxPacketsEth0, series, 500_000)

	assert.Equal(t, "eth0", s.Interface)
	assert.Equal(t, "rx_packets", s.Metric)
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 2.0, s.Duration, 1e-9)
	assert.InDelta(t, 15.0, s.Total, 1e-9)
	assert.InDelta(t, 6.0, s.Mean, 1e-9)
	// population: sqrt(((-4)^2 + (-2)^2 + 0 + 2^2 + 4^2) / 5) = sqrt(8)
	assert.InDelta(t, math.Sqrt(8), s.StdDev, 1e-9)
}

func TestSummarize_SinglePoint(t *testing.T) {
	s := Summarize(rxPacketsEth0, points(0, 42), 1_000_000)

	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0.0, s.Duration)
	assert.Equal(t, 42.0, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(rxPacketsEth0, nil, 1_000_000)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.Mean)
}

func TestSummarize_TwoPointsDividesByN(t *testing.T) {
	s := Summarize(rxPacketsEth0, points(0, 2, 1, 4), 1_000_000)

	assert.Equal(t, 3.0, s.Mean)
	// sample stddev would be sqrt(2)
	assert.InDelta(t, 1.0, s.StdDev, 1e-9)
}
