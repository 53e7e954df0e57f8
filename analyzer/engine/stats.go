package engine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// Summarize computes the statistics of a normalized delta series. Each
// delta is scaled to a per-second rate using the sample period of
// sampleRate microseconds before the mean and standard deviation are taken.
func Summarize(key telemetrics.TrackedKey, points []Point, sampleRate int) telemetrics.Summary {
	summary := telemetrics.Summary{
		Interface: key.Interface,
		Metric:    key.Metric.String(),
		Count:     len(points),
	}
	if len(points) == 0 {
		return summary
	}

	period := float64(sampleRate) * 1e-6
	scaled := make([]float64, len(points))
	for i, p := range points {
		summary.Total += p.Value
		scaled[i] = p.Value / period
	}

	summary.Duration = points[len(points)-1].Time - points[0].Time

	// PopMeanStdDev derives the population variance from the n-1 estimate,
	// which is NaN for a single sample.
	if len(scaled) == 1 {
		summary.Mean = scaled[0]
		return summary
	}
	summary.Mean, summary.StdDev = stat.PopMeanStdDev(scaled, nil)

	return summary
}
