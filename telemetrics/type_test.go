package telemetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric_AllKnown(t *testing.T) {
	tests := []struct {
		name      string
		metric    Metric
		title     string
		tolerance float64
	}{
		{"rx_packets", RxPackets, "RX Packets", 50},
		{"tx_packets", TxPackets, "TX Packets", 50},
		{"rx_bytes", RxBytes, "RX Bytes", 1000},
		{"tx_bytes", TxBytes, "TX Bytes", 1000},
		{"rx_dropped", RxDropped, "RX Dropped", 0},
		{"tx_dropped", TxDropped, "TX Dropped", 0},
		{"rx_fifo_errors", RxFifoErrors, "RX FIFO Errors", 0},
		{"tx_fifo_errors", TxFifoErrors, "TX FIFO Errors", 0},
	}

	require.Len(t, AllMetrics(), len(tests))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMetric(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.metric, m)
			assert.Equal(t, tt.name, m.String())
			assert.Equal(t, tt.title, m.Title())
			assert.Equal(t, tt.tolerance, m.Tolerance())
			assert.True(t, m.Valid())
		})
	}
}

func TestParseMetric_Unknown(t *testing.T) {
	_, err := ParseMetric("rx_errors")

	var unknown *UnknownMetricError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "rx_errors", unknown.Name)
	assert.False(t, Metric(0).Valid())
}

func TestObservation_Key(t *testing.T) {
	obs := Observation{Timestamp: 1.5, Interface: "eth0", Metric: TxBytes, Value: 9}
	assert.Equal(t, TrackedKey{Interface: "eth0", Metric: TxBytes}, obs.Key())
	assert.Equal(t, "eth0/tx_bytes", obs.Key().String())
}

func TestParseError_Unwrap(t *testing.T) {
	err := &ParseError{Line: 4, Err: &UnknownMetricError{Name: "foo"}}

	var unknown *UnknownMetricError
	assert.ErrorAs(t, err, &unknown)
	assert.Contains(t, err.Error(), "line 4")
}
