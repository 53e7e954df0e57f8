package engine

import (
	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// Point is one sample of a series. Value is a cumulative counter until the
// series goes through ToDeltas, and a per-sample delta afterwards.
type Point struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Baseline is the last observation of a key that still looked like
// pre-test noise. The zero value is unset.
type Baseline struct {
	point Point
	set   bool
}

// Set records p as the current baseline
func (b *Baseline) Set(p Point) {
	b.point = p
	b.set = true
}

// Get returns the baseline and whether one has been recorded
func (b Baseline) Get() (Point, bool) {
	return b.point, b.set
}

// keyState is the per-key state owned by the Engine for one run.
type keyState struct {
	key       telemetrics.TrackedKey
	tolerance float64
	baseline  Baseline
	series    []Point
	err       error
}

func newKeyState(key telemetrics.TrackedKey, tolerance float64) *keyState {
	return &keyState{key: key, tolerance: tolerance}
}

// observe feeds one cumulative sample through start-of-test detection.
// Until the series is seeded every sample within tolerance of the baseline
// replaces it. The first sample beyond tolerance seeds the series with the
// baseline followed by the sample; from then on samples are appended as-is.
func (s *keyState) observe(p Point) {
	if s.err != nil {
		return
	}

	if len(s.series) > 0 {
		s.series = append(s.series, p)
		return
	}

	base, ok := s.baseline.Get()
	if !ok || p.Value-base.Value <= s.tolerance {
		s.baseline.Set(p)
		return
	}

	s.series = append(s.series, base, p)
}

// fail records the first failure of the key; later ones are dropped.
func (s *keyState) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// seeded reports whether the start of the test has been detected
func (s *keyState) seeded() bool {
	return len(s.series) > 0
}
