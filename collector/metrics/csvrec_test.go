package metrics

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// fakeSource adds step to every counter on each read
type fakeSource struct {
	mu     sync.Mutex
	reads  uint64
	step   uint64
	ifaces []string
	err    error
}

func (f *fakeSource) Counters(ctx context.Context) ([]InterfaceCounters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	out := make([]InterfaceCounters, 0, len(f.ifaces))
	for _, name := range f.ifaces {
		values := map[telemetrics.Metric]uint64{}
		for _, m := range telemetrics.AllMetrics() {
			values[m] = f.reads * f.step
		}
		out = append(out, InterfaceCounters{Interface: name, Values: values})
	}
	f.reads++
	return out, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	now := c.t
	c.t = c.t.Add(250 * time.Millisecond)
	return now
}

func readCSV(t *testing.T, r *CSVRecorder) [][]string {
	t.Helper()
	data, err := r.GetCSVMetrics()
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

// tests the CSV format and structure
func TestSample_CSVFormat(t *testing.T) {
	src := &fakeSource{step: 100, ifaces: []string{"eth0", "lo"}}
	rec := NewCSVRecorder(src, []string{"eth0"})
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	rec.now = clock.now

	for i := 0; i < 3; i++ {
		rows, err := rec.Sample(context.Background())
		require.NoError(t, err)
		assert.Equal(t, len(telemetrics.AllMetrics()), rows)
	}

	records := readCSV(t, rec)
	require.Len(t, records, 1+3*8)
	assert.Equal(t, telemetrics.GetCSVHeader(), records[0])

	// first sample, first metric
	assert.Equal(t, []string{"0", "0.000000", "eth0", "rx_packets", "0"}, records[1])
	// third sample, last metric
	assert.Equal(t, []string{"23", "0.500000", "eth0", "tx_fifo_errors", "200"}, records[24])

	for i := 1; i < len(records); i++ {
		assert.Equal(t, "eth0", records[i][2], "row %d", i)
	}
	assert.Equal(t, 24, rec.Rows())
}

func TestSample_AllInterfacesWhenUnfiltered(t *testing.T) {
	src := &fakeSource{step: 1, ifaces: []string{"eth0", "eth1"}}
	rec := NewCSVRecorder(src, nil)

	rows, err := rec.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16, rows)
}

func TestSample_SourceError(t *testing.T) {
	rec := NewCSVRecorder(&fakeSource{err: errors.New("no /proc")}, nil)

	_, err := rec.Sample(context.Background())
	assert.Error(t, err)

	data, err := rec.GetCSVMetrics()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRun_StopsAfterDuration(t *testing.T) {
	src := &fakeSource{step: 10, ifaces: []string{"eth0"}}
	rec := NewCSVRecorder(src, nil)

	err := rec.Run(context.Background(), 10*time.Millisecond, 55*time.Millisecond)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, rec.Rows(), 2*8)

	var sb strings.Builder
	_, err = rec.WriteTo(&sb)
	require.NoError(t, err)
	data, _ := rec.GetCSVMetrics()
	assert.Equal(t, data, sb.String())
}

func TestRun_InvalidInterval(t *testing.T) {
	rec := NewCSVRecorder(&fakeSource{}, nil)
	assert.Error(t, rec.Run(context.Background(), 0, time.Second))
}

// tests thread safety of snapshots taken while sampling
func TestGetCSVMetrics_ConcurrentAccess(t *testing.T) {
	src := &fakeSource{step: 1, ifaces: []string{"eth0"}}
	rec := NewCSVRecorder(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx, time.Millisecond, 0) }()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := rec.GetCSVMetrics()
			if err != nil {
				t.Errorf("GetCSVMetrics returned error: %v", err)
				return
			}
			if _, err := csv.NewReader(strings.NewReader(data)).ReadAll(); err != nil {
				t.Errorf("snapshot is not valid CSV: %v", err)
			}
		}()
	}
	wg.Wait()

	cancel()
	require.NoError(t, <-done)
}

func TestPSUtilSource(t *testing.T) {
	counters, err := PSUtilSource{}.Counters(context.Background())
	if err != nil {
		t.Skipf("interface counters unavailable: %v", err)
	}

	for _, c := range counters {
		assert.NotEmpty(t, c.Interface)
		assert.Len(t, c.Values, len(telemetrics.AllMetrics()))
	}
}
