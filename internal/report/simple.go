package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkguard/internal/model"
)

// SimpleWriter outputs the plain text verdict:
//
//	Link check FAILED: 2 violation(s)
//	  - README.md :: docs/x.md -> missing path (docs/x.md)
//
// or "Link check PASSED." when nothing is broken.
type SimpleWriter struct {
	baseWriter

	// verbose appends the run totals and a fix hint per violation.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	if report.Passed() {
		sb.WriteString("Link check PASSED.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Link check FAILED: %d violation(s)\n", len(report.Violations)))
		for _, v := range report.Violations {
			sb.WriteString("  - ")
			sb.WriteString(v.String())
			sb.WriteString("\n")
			if w.verbose {
				if hint := v.Reason.Hint(); hint != "" {
					sb.WriteString(fmt.Sprintf("      line %d: %s\n", v.Line, hint))
				}
			}
		}
	}

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Checked %d reference(s) in %d document(s).\n", report.References, report.Documents))
	}

	return w.output.Write([]byte(sb.String()))
}
