package telemetrics

import (
	"fmt"
)

// Metric is one of the interface counters a load-test run records.
type Metric int

const (
	RxPackets Metric = iota + 1
	TxPackets
	RxBytes
	TxBytes
	RxDropped
	TxDropped
	RxFifoErrors
	TxFifoErrors
)

type metricInfo struct {
	name  string
	title string
	// tolerance is the largest counter change still treated as background
	// noise (ARP, keepalives) rather than test traffic.
	tolerance float64
}

var metricTable = map[Metric]metricInfo{
	RxPackets:    {name: "rx_packets", title: "RX Packets", tolerance: 50},
	TxPackets:    {name: "tx_packets", title: "TX Packets", tolerance: 50},
	RxBytes:      {name: "rx_bytes", title: "RX Bytes", tolerance: 1000},
	TxBytes:      {name: "tx_bytes", title: "TX Bytes", tolerance: 1000},
	RxDropped:    {name: "rx_dropped", title: "RX Dropped", tolerance: 0},
	TxDropped:    {name: "tx_dropped", title: "TX Dropped", tolerance: 0},
	RxFifoErrors: {name: "rx_fifo_errors", title: "RX FIFO Errors", tolerance: 0},
	TxFifoErrors: {name: "tx_fifo_errors", title: "TX FIFO Errors", tolerance: 0},
}

// AllMetrics returns every known metric in declaration order.
func AllMetrics() []Metric {
	return []Metric{
		RxPackets, TxPackets,
		RxBytes, TxBytes,
		RxDropped, TxDropped,
		RxFifoErrors, TxFifoErrors,
	}
}

// ParseMetric maps a counter name such as "rx_packets" to its Metric.
func ParseMetric(name string) (Metric, error) {
	for _, m := range AllMetrics() {
		if metricTable[m].name == name {
			return m, nil
		}
	}
	return 0, &UnknownMetricError{Name: name}
}

// String returns the counter name used in config and CSV files
func (m Metric) String() string {
	if info, ok := metricTable[m]; ok {
		return info.name
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// Title returns the human readable name used in reports
func (m Metric) Title() string {
	return metricTable[m].title
}

// Tolerance returns the default noise threshold of the metric
func (m Metric) Tolerance() float64 {
	return metricTable[m].tolerance
}

// Valid reports whether m is one of the declared metrics
func (m Metric) Valid() bool {
	_, ok := metricTable[m]
	return ok
}

// TrackedKey identifies one series: a counter on one interface.
type TrackedKey struct {
	Interface string
	Metric    Metric
}

func (k TrackedKey) String() string {
	return k.Interface + "/" + k.Metric.String()
}

// Observation is one row of a results file.
type Observation struct {
	Timestamp float64 // seconds
	Interface string
	Metric    Metric
	Value     float64 // cumulative counter value
}

// Key returns the series the observation belongs to
func (o Observation) Key() TrackedKey {
	return TrackedKey{Interface: o.Interface, Metric: o.Metric}
}

// Summary holds the statistics of one trimmed series.
type Summary struct {
	Interface string  `json:"interface,omitempty"`
	Metric    string  `json:"metric,omitempty"`
	Duration  float64 `json:"duration"` // seconds between first and last kept sample
	Count     int     `json:"count"`
	Total     float64 `json:"total"`  // sum of the per-sample deltas
	Mean      float64 `json:"mean"`   // per second
	StdDev    float64 `json:"stddev"` // per second, population
}

func GetCSVHeader() []string {
	return []string{
		"index",
		"timestamp",
		"interface",
		"metric",
		"value"}
}
