package metrics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// CSVRecorder samples interface counters and records them in the results
// CSV format read by the analyzer: index,timestamp,interface,metric,value.
// Timestamps are seconds since the first sample.
type CSVRecorder struct {
	mu         sync.RWMutex
	source     CounterSource
	interfaces map[string]bool
	buf        bytes.Buffer
	writer     *csv.Writer
	index      int
	start      time.Time
	now        func() time.Time
}

// NewCSVRecorder records the given interfaces, or all of them when
// interfaces is empty.
func NewCSVRecorder(source CounterSource, interfaces []string) *CSVRecorder {
	r := &CSVRecorder{
		source: source,
		now:    time.Now,
	}
	if len(interfaces) > 0 {
		r.interfaces = make(map[string]bool, len(interfaces))
		for _, name := range interfaces {
			r.interfaces[name] = true
		}
	}
	r.writer = csv.NewWriter(&r.buf)
	return r
}

// Sample reads the counters once and appends one row per interface and
// metric. It returns the number of rows written.
func (r *CSVRecorder) Sample(ctx context.Context) (int, error) {
	counters, err := r.source.Counters(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read counters: %w", err)
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.start.IsZero() {
		r.start = now
		if err := r.writer.Write(telemetrics.GetCSVHeader()); err != nil {
			return 0, fmt.Errorf("error writing header: %w", err)
		}
	}
	timestamp := strconv.FormatFloat(now.Sub(r.start).Seconds(), 'f', 6, 64)

	rows := 0
	for _, c := range counters {
		if r.interfaces != nil && !r.interfaces[c.Interface] {
			continue
		}
		for _, m := range telemetrics.AllMetrics() {
			row := []string{
				strconv.Itoa(r.index),
				timestamp,
				c.Interface,
				m.String(),
				strconv.FormatUint(c.Values[m], 10),
			}
			if err := r.writer.Write(row); err != nil {
				return rows, fmt.Errorf("error writing row: %w", err)
			}
			r.index++
			rows++
		}
	}

	// Flush the writer so snapshots always see complete rows
	r.writer.Flush()
	if err := r.writer.Error(); err != nil {
		return rows, fmt.Errorf("error flushing writer: %w", err)
	}

	return rows, nil
}

// Run samples every interval until ctx is done or duration has elapsed.
// A zero duration runs until ctx is done.
func (r *CSVRecorder) Run(ctx context.Context, interval, duration time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Sample(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// GetCSVMetrics returns the CSV recorded so far
func (r *CSVRecorder) GetCSVMetrics() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.buf.String(), nil
}

// WriteTo writes the CSV recorded so far to w
func (r *CSVRecorder) WriteTo(w io.Writer) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, err := w.Write(r.buf.Bytes())
	return int64(n), err
}

// Rows returns the number of data rows recorded
func (r *CSVRecorder) Rows() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index
}
