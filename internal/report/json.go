package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/linkguard/internal/model"
)

// JSONWriter outputs the machine-readable report consumed by CI tooling.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the JSON document written for a report.
type JSONReport struct {
	Passed     bool              `json:"passed"`
	Violations []string          `json:"violations"`
	Details    []model.Violation `json:"details"`
	Digest     string            `json:"digest"`
	Documents  int               `json:"documents"`
	References int               `json:"references"`
}

// NewJSONReport converts a report to its JSON form.
func NewJSONReport(report *model.Report) *JSONReport {
	details := report.Violations
	if details == nil {
		details = []model.Violation{}
	}
	return &JSONReport{
		Passed:     report.Passed(),
		Violations: report.Lines(),
		Details:    details,
		Digest:     report.Digest,
		Documents:  report.Documents,
		References: report.References,
	}
}

// Write outputs the report as one JSON document followed by a newline.
// HTML escaping is off so violation lines keep their literal "->".
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(NewJSONReport(report)); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
