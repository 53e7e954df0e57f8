package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yaron8/netperf-analyzer/logi"
	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// Options configures one run of the Engine.
type Options struct {
	// SampleRate is the collector's sampling period in microseconds.
	SampleRate int
	// Tolerances overrides the default noise threshold of a metric.
	Tolerances map[telemetrics.Metric]float64
}

// Result is the outcome for one tracked key. Summary is nil when the key
// produced no data; Err is set when that was caused by a failure.
type Result struct {
	Key     telemetrics.TrackedKey
	Summary *telemetrics.Summary
	Err     error
}

// NoData reports whether the key has nothing to report
func (r Result) NoData() bool {
	return r.Summary == nil
}

// Engine isolates the test-active window of every tracked series and
// summarizes it. Observations are fed in file order with Observe, then Run
// executes delta conversion, trailing trim, shaving and statistics per key.
//
// An Engine serves a single run and is not safe for concurrent use.
type Engine struct {
	opts   Options
	order  []telemetrics.TrackedKey
	states map[telemetrics.TrackedKey]*keyState
	logger *slog.Logger
}

// NewEngine creates an Engine tracking keys. Duplicate keys are tracked
// once; results come back grouped by interface in first-seen order.
func NewEngine(keys []telemetrics.TrackedKey, opts Options) (*Engine, error) {
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be a positive number of microseconds, got %d", opts.SampleRate)
	}

	e := &Engine{
		opts:   opts,
		order:  orderKeys(keys),
		states: make(map[telemetrics.TrackedKey]*keyState, len(keys)),
		logger: logi.GetLogger(),
	}

	for _, key := range e.order {
		if !key.Metric.Valid() {
			return nil, &telemetrics.UnknownMetricError{Name: key.Metric.String()}
		}
		e.states[key] = newKeyState(key, e.tolerance(key.Metric))
	}

	return e, nil
}

// Tracks reports whether key is one of the engine's series
func (e *Engine) Tracks(key telemetrics.TrackedKey) bool {
	_, ok := e.states[key]
	return ok
}

// Observe feeds one observation. It returns false when the observation
// belongs to a key that is not tracked.
func (e *Engine) Observe(obs telemetrics.Observation) bool {
	st, ok := e.states[obs.Key()]
	if !ok {
		return false
	}

	wasSeeded := st.seeded()
	st.observe(Point{Time: obs.Timestamp, Value: obs.Value})
	if !wasSeeded && st.seeded() {
		e.logger.Debug("test start detected",
			"interface", obs.Interface,
			"metric", obs.Metric.String(),
			"timestamp", st.series[0].Time)
	}

	return true
}

// Fail marks key as failed. The key reports this error instead of
// statistics. Only the first failure of a key is kept.
func (e *Engine) Fail(key telemetrics.TrackedKey, err error) bool {
	st, ok := e.states[key]
	if !ok {
		return false
	}
	st.fail(err)
	return true
}

// Run processes every tracked series and returns one Result per key.
func (e *Engine) Run() []Result {
	samplesPerSecond := SamplesPerSecond(e.opts.SampleRate)
	results := make([]Result, 0, len(e.order))

	for _, key := range e.order {
		st := e.states[key]
		res := Result{Key: key}

		summary, err := e.process(st, samplesPerSecond)
		switch {
		case err != nil:
			res.Err = err
			if errors.Is(err, telemetrics.ErrInsufficientData) {
				e.logger.Warn("not enough samples", "key", key.String(), "error", err)
			} else {
				e.logger.Error("series failed", "key", key.String(), "error", err)
			}
		case summary == nil:
			e.logger.Info("no sample exceeded tolerance", "key", key.String(), "tolerance", st.tolerance)
		default:
			res.Summary = summary
			e.logger.Info("series summarized",
				"key", key.String(),
				"samples", summary.Count,
				"duration", summary.Duration)
		}

		results = append(results, res)
	}

	return results
}

// process runs the stages in order: deltas, trailing trim, shave,
// normalize, statistics. It returns nil, nil for a series that was never
// seeded.
func (e *Engine) process(st *keyState, samplesPerSecond int) (*telemetrics.Summary, error) {
	if st.err != nil {
		return nil, st.err
	}
	if !st.seeded() {
		return nil, nil
	}

	deltas := ToDeltas(st.series)

	trimmed, err := TrimTrailing(deltas, st.tolerance)
	if err != nil {
		return nil, err
	}

	shaved, err := Shave(trimmed, samplesPerSecond)
	if err != nil {
		return nil, err
	}

	summary := Summarize(st.key, Normalize(shaved), e.opts.SampleRate)
	return &summary, nil
}

func (e *Engine) tolerance(m telemetrics.Metric) float64 {
	if tol, ok := e.opts.Tolerances[m]; ok {
		return tol
	}
	return m.Tolerance()
}

// orderKeys removes duplicates and groups keys by interface, keeping the
// first-seen order of interfaces and of metrics within an interface.
func orderKeys(keys []telemetrics.TrackedKey) []telemetrics.TrackedKey {
	seen := make(map[telemetrics.TrackedKey]bool, len(keys))
	byIface := make(map[string][]telemetrics.TrackedKey)
	var ifaces []string

	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		if _, ok := byIface[key.Interface]; !ok {
			ifaces = append(ifaces, key.Interface)
		}
		byIface[key.Interface] = append(byIface[key.Interface], key)
	}

	ordered := make([]telemetrics.TrackedKey, 0, len(seen))
	for _, iface := range ifaces {
		ordered = append(ordered, byIface[iface]...)
	}
	return ordered
}
