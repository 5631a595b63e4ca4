// Package output provides writers for the feature-level table.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/tmtprep/internal/pipeline"
)

// Columns is the output column order expected by downstream summarization.
var Columns = []string{
	"ProteinName",
	"PeptideSequence",
	"Charge",
	"PSM",
	"Channel",
	"Condition",
	"BioReplicate",
	"Run",
	"Mixture",
	"Intensity",
}

// MissingValue is written for a missing intensity.
const MissingValue = "NA"

// TabWriter writes observations in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(Columns, "\t") + "\n")
	return err
}

// Write writes a single observation.
func (tw *TabWriter) Write(o *pipeline.Observation) error {
	values := []string{
		o.ProteinName,
		o.PeptideSequence,
		o.Charge,
		o.PSM,
		o.Channel,
		o.Condition,
		o.BioReplicate,
		o.Run,
		o.Mixture,
		FormatIntensity(o.Intensity),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// FormatIntensity renders an intensity with the shortest exact
// representation, or NA when missing.
func FormatIntensity(in pipeline.Intensity) string {
	if !in.Valid {
		return MissingValue
	}
	return strconv.FormatFloat(in.Value, 'g', -1, 64)
}
