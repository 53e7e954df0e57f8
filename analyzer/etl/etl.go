package etl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/yaron8/netperf-analyzer/logi"
	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// Sink receives the observations decoded from a results file.
type Sink interface {
	Observe(obs telemetrics.Observation) bool
	Fail(key telemetrics.TrackedKey, err error) bool
}

// Stats describes one pass over a results file.
type Stats struct {
	Lines        int // data lines read, header excluded
	Observations int // observations accepted by the sink
	Untracked    int // valid rows for keys the sink does not track
	Errors       int // rows that failed to parse
	// RowErrors holds the parse errors that could not be attributed to a
	// tracked key. Errors of tracked keys go to Sink.Fail instead.
	RowErrors *multierror.Error
}

type ETL struct {
	sink   Sink
	logger *slog.Logger
}

func NewETL(sink Sink) *ETL {
	return &ETL{
		sink:   sink,
		logger: logi.GetLogger(),
	}
}

// LoadFile opens path and streams it into the sink with Load.
func (etl *ETL) LoadFile(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open results: %w", err)
	}
	defer f.Close()

	return etl.Load(f)
}

// Load reads a results CSV line by line and feeds each row to the sink in
// file order. A bad row never aborts the pass; only read errors are
// returned.
func (etl *ETL) Load(r io.Reader) (Stats, error) {
	scanner := bufio.NewScanner(r)
	stats := Stats{}

	// Skip the header line
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return stats, fmt.Errorf("error reading results: %w", err)
		}
		etl.logger.Warn("Results file is empty")
		return stats, nil
	}

	lineNumber := 1
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		// Ignore empty lines (including lines with only whitespace)
		if line == "" {
			continue
		}
		stats.Lines++

		obs, keyKnown, err := etl.parseCSVLine(line)
		if err != nil {
			stats.Errors++
			perr := &telemetrics.ParseError{Line: lineNumber, Err: err}

			if keyKnown && etl.sink.Fail(obs.Key(), perr) {
				etl.logger.Error("Error parsing line", "line_number", lineNumber, "key", obs.Key().String(), "error", err)
				continue
			}

			etl.logger.Error("Error parsing line", "line_number", lineNumber, "error", err)
			stats.RowErrors = multierror.Append(stats.RowErrors, perr)
			continue
		}

		if !etl.sink.Observe(obs) {
			stats.Untracked++
			continue
		}
		stats.Observations++
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("error reading results: %w", err)
	}

	etl.logger.Info("Results processed",
		"total_lines", stats.Lines,
		"observations", stats.Observations,
		"untracked", stats.Untracked,
		"errors", stats.Errors)

	return stats, nil
}

// parseCSVLine parses a CSV line into an Observation.
// Expected format: index,timestamp,interface,metric,value
//
// keyKnown reports whether the interface and metric of the returned
// observation were decoded, even if the row as a whole failed.
func (etl *ETL) parseCSVLine(line string) (obs telemetrics.Observation, keyKnown bool, err error) {
	fields := strings.Split(line, ",")

	if len(fields) != len(telemetrics.GetCSVHeader()) {
		return obs, false, fmt.Errorf("expected %d fields, got %d", len(telemetrics.GetCSVHeader()), len(fields))
	}

	obs.Interface = strings.TrimSpace(fields[2])
	if obs.Interface == "" {
		return obs, false, errors.New("empty interface")
	}

	obs.Metric, err = telemetrics.ParseMetric(strings.TrimSpace(fields[3]))
	if err != nil {
		return obs, false, err
	}
	keyKnown = true

	obs.Timestamp, err = parseFinite(fields[1])
	if err != nil {
		return obs, keyKnown, fmt.Errorf("invalid timestamp: %w", err)
	}

	obs.Value, err = parseFinite(fields[4])
	if err != nil {
		return obs, keyKnown, fmt.Errorf("invalid value: %w", err)
	}

	return obs, keyKnown, nil
}

// parseFinite rejects NaN and infinities, which ParseFloat accepts.
func parseFinite(field string) (float64, error) {
	field = strings.TrimSpace(field)
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", field)
	}
	return v, nil
}
