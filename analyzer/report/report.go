// Package report renders engine results as the human readable text
// report or as a JSON document keyed by interface and metric.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/yaron8/netperf-analyzer/analyzer/engine"
	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// Format selects the output representation.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatText, FormatJSON:
		return Format(name), nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Document is the JSON form of a run: interface -> metric -> summary.
// A nil summary means the key had no data.
type Document struct {
	Summaries map[string]map[string]*telemetrics.Summary `json:"summaries"`
	Errors    map[string]map[string]string               `json:"errors,omitempty"`
}

// Build groups results into a Document.
func Build(results []engine.Result) Document {
	doc := Document{Summaries: make(map[string]map[string]*telemetrics.Summary)}

	for _, r := range results {
		iface, metric := r.Key.Interface, r.Key.Metric.String()

		if doc.Summaries[iface] == nil {
			doc.Summaries[iface] = make(map[string]*telemetrics.Summary)
		}
		doc.Summaries[iface][metric] = r.Summary

		if r.Err != nil {
			if doc.Errors == nil {
				doc.Errors = make(map[string]map[string]string)
			}
			if doc.Errors[iface] == nil {
				doc.Errors[iface] = make(map[string]string)
			}
			doc.Errors[iface][metric] = r.Err.Error()
		}
	}

	return doc
}

// Write renders results to w in the given format.
func Write(w io.Writer, format Format, results []engine.Result) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, results)
	case FormatText, "":
		return WriteText(w, results)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteJSON writes the Document of results as indented JSON.
func WriteJSON(w io.Writer, results []engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Build(results)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteText writes one block per key, in result order.
func WriteText(w io.Writer, results []engine.Result) error {
	for _, r := range results {
		var err error
		if r.NoData() {
			err = writeNoData(w, r)
		} else {
			err = writeSummary(w, r.Key, r.Summary)
		}
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

func writeNoData(w io.Writer, r engine.Result) error {
	title := r.Key.Metric.Title()
	if r.Err != nil {
		_, err := fmt.Fprintf(w, "There were no %s on %s: %v\n\n", title, r.Key.Interface, r.Err)
		return err
	}
	_, err := fmt.Fprintf(w, "There were no %s\n\n", title)
	return err
}

func writeSummary(w io.Writer, key telemetrics.TrackedKey, s *telemetrics.Summary) error {
	title, iface := key.Metric.Title(), key.Interface

	_, err := fmt.Fprintf(w,
		"Total sampled time for %s on %s: %.2f seconds\n"+
			"Number of samples: %d\n"+
			"%s total on %s: %s\n"+
			"Mean %s per second on %s: %.2f\n"+
			"Standard Deviation of %s per second on %s: %.2f\n\n",
		title, iface, s.Duration,
		s.Count,
		title, iface, strconv.FormatFloat(s.Total, 'f', -1, 64),
		title, iface, s.Mean,
		title, iface, s.StdDev,
	)
	return err
}
