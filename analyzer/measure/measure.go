// Package measure reads the measure configuration: the list of interface
// counters a run tracks, one "interface metric" pair per line.
package measure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/yaron8/netperf-analyzer/logi"
	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// Load opens path and parses it with Parse.
func Load(path string) ([]telemetrics.TrackedKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open measure config: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse returns the tracked keys declared in r, in file order. Blank lines
// and lines starting with '#' are skipped.
//
// Bad lines do not stop parsing: the keys of every valid line are returned
// together with a *multierror.Error holding one ConfigError or
// UnknownMetricError per bad line.
func Parse(r io.Reader) ([]telemetrics.TrackedKey, error) {
	logger := logi.GetLogger()
	scanner := bufio.NewScanner(r)

	var (
		keys []telemetrics.TrackedKey
		errs *multierror.Error
	)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			err := &telemetrics.ConfigError{Line: lineNumber, Text: line}
			logger.Error("Invalid measure config line", "line_number", lineNumber, "error", err)
			errs = multierror.Append(errs, err)
			continue
		}

		metric, err := telemetrics.ParseMetric(fields[1])
		if err != nil {
			logger.Error("Unknown metric in measure config",
				"line_number", lineNumber,
				"interface", fields[0],
				"error", err)
			errs = multierror.Append(errs, fmt.Errorf("config line %d: interface %s: %w", lineNumber, fields[0], err))
			continue
		}

		keys = append(keys, telemetrics.TrackedKey{Interface: fields[0], Metric: metric})
	}

	if err := scanner.Err(); err != nil {
		return keys, fmt.Errorf("error reading measure config: %w", err)
	}

	return keys, errs.ErrorOrNil()
}
