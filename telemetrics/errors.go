package telemetrics

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when a series has too few samples left
// to produce statistics.
var ErrInsufficientData = errors.New("insufficient data")

// ConfigError reports a malformed line in the measure configuration file.
type ConfigError struct {
	Line int
	Text string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config line %d: expected \"interface metric\", got %q", e.Line, e.Text)
}

// ParseError reports a results row that could not be decoded.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("results line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownMetricError reports a metric name outside the supported set.
type UnknownMetricError struct {
	Name string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Name)
}
