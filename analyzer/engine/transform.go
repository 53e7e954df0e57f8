package engine

import (
	"fmt"
	"math"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// ToDeltas converts a cumulative series into per-sample deltas. The first
// point has no predecessor, so its delta is 0. The input is not modified.
func ToDeltas(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}

	out := make([]Point, len(points))
	out[0] = Point{Time: points[0].Time}
	for i := 1; i < len(points); i++ {
		out[i] = Point{
			Time:  points[i].Time,
			Value: points[i].Value - points[i-1].Value,
		}
	}
	return out
}

// TrimTrailing drops samples from the end of a delta series while the last
// delta does not exceed the one before it by more than tolerance. This cuts
// the low-activity tail left after the load generator stops.
//
// A series that cannot keep at least two points is insufficient.
func TrimTrailing(points []Point, tolerance float64) ([]Point, error) {
	n := len(points)
	for n >= 2 && points[n-1].Value-points[n-2].Value <= tolerance {
		n--
	}

	if n < 2 {
		return nil, fmt.Errorf("trailing trim left %d of %d samples: %w",
			n, len(points), telemetrics.ErrInsufficientData)
	}

	return points[:n:n], nil
}

// SamplesPerSecond returns how many samples of sampleRate microseconds fit
// in one second, rounding half to even.
func SamplesPerSecond(sampleRate int) int {
	return int(math.RoundToEven(1e6 / float64(sampleRate)))
}

// Shave discards the last sample, which may cover a partial interval, and
// the first samplesPerSecond+1 samples: a partial first interval plus one
// second of ramp-up. At least one sample must survive.
func Shave(points []Point, samplesPerSecond int) ([]Point, error) {
	drop := samplesPerSecond + 2
	if len(points) <= drop {
		return nil, fmt.Errorf("shaving %d samples from a series of %d: %w",
			drop, len(points), telemetrics.ErrInsufficientData)
	}

	return points[samplesPerSecond+1 : len(points)-1], nil
}

// Normalize re-bases the series so its first timestamp is zero.
func Normalize(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}

	base := points[0].Time
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{Time: p.Time - base, Value: p.Value}
	}
	return out
}
