package model

import "fmt"

// Violation is one broken reference as printed in the report.
type Violation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// String formats the violation as "<file> :: <raw> -> <explanation>".
// The line number is not part of the string; it is kept in Line for the
// structured forms.
func (v Violation) String() string {
	return fmt.Sprintf("%s :: %s -> %s", v.File, v.Raw, Explain(v.Reason, v.Detail))
}

// Report is the aggregated result of a run.
type Report struct {
	// Root is the tree root the run was performed on.
	Root string `json:"root"`

	// Documents is the number of collected documents.
	Documents int `json:"documents"`

	// References is the number of extracted references.
	References int `json:"references"`

	// Violations are de-duplicated and sorted by their String form.
	Violations []Violation `json:"details"`

	// Digest is the hex SHA3-256 of the violation lines.
	Digest string `json:"digest"`
}

// Passed reports whether the run found no violations.
func (r *Report) Passed() bool {
	return len(r.Violations) == 0
}

// Lines returns the violation strings in report order. This is the
// machine-readable form of the report.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		lines = append(lines, v.String())
	}
	return lines
}
