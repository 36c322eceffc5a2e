package model

import (
	"encoding/json"
	"fmt"
)

// Status is the verdict on a single reference.
type Status int

const (
	// StatusOK means the reference resolved.
	StatusOK Status = iota
	// StatusBroken means the reference did not resolve.
	StatusBroken
)

// String returns "ok" or "broken".
func (s Status) String() string {
	if s == StatusBroken {
		return "broken"
	}
	return "ok"
}

// MarshalJSON encodes the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Reason is the failure taxonomy. The string value is the text printed in
// violation lines.
type Reason string

// Failure reasons.
const (
	ReasonNone               Reason = ""
	ReasonMissingPath        Reason = "missing path"
	ReasonMissingAnchor      Reason = "missing anchor"
	ReasonAnchorNotText      Reason = "anchor target is not text"
	ReasonInvalidInternalURL Reason = "invalid internal url"
	ReasonRefNotFound        Reason = "ref not found"
	ReasonObjectNotFound     Reason = "object not found at ref"
	ReasonKindMismatch       Reason = "kind mismatch"
	ReasonBrokenURL          Reason = "broken url"
	ReasonRelativeForbidden  Reason = "relative-link forbidden"
	ReasonStaleReference     Reason = "stale reference"
)

// reasonHints maps each reason to a one-line fix suggestion used by the
// markdown report.
var reasonHints = map[Reason]string{
	ReasonMissingPath:        "Fix the path or restore the file it points to.",
	ReasonMissingAnchor:      "Link to an existing heading slug or rename the heading.",
	ReasonAnchorNotText:      "Drop the fragment; the target has no headings.",
	ReasonInvalidInternalURL: "Use <repo>/blob/<ref>/<path> or <repo>/tree/<ref>/<path>.",
	ReasonRefNotFound:        "Pin the link to a commit that exists in the repository.",
	ReasonObjectNotFound:     "Point the link at a path that exists at that ref.",
	ReasonKindMismatch:       "Use blob for files and tree for directories.",
	ReasonBrokenURL:          "Update or remove the external link.",
	ReasonRelativeForbidden:  "Replace the relative link with a canonical repository URL.",
	ReasonStaleReference:     "Follow the rule guidance.",
}

// Hint returns the fix suggestion for r, or an empty string.
func (r Reason) Hint() string {
	return reasonHints[r]
}

// ResolutionResult is the outcome of resolving one Reference.
type ResolutionResult struct {
	Ref    Reference `json:"reference"`
	Status Status    `json:"status"`
	Reason Reason    `json:"reason,omitempty"`
	// Detail is the evidence in parentheses after the reason: a path,
	// ref:path spec, HTTP status or transport error.
	Detail string `json:"detail,omitempty"`
}

// OK returns a successful result for ref.
func OK(ref Reference) ResolutionResult {
	return ResolutionResult{Ref: ref, Status: StatusOK}
}

// Broken returns a failed result for ref.
func Broken(ref Reference, reason Reason, detail string) ResolutionResult {
	return ResolutionResult{Ref: ref, Status: StatusBroken, Reason: reason, Detail: detail}
}

// Explanation renders "<reason> (<detail>)", or the bare reason when there
// is no detail.
func (r ResolutionResult) Explanation() string {
	return Explain(r.Reason, r.Detail)
}

// Explain renders a reason and optional detail.
func Explain(reason Reason, detail string) string {
	if detail == "" {
		return string(reason)
	}
	return fmt.Sprintf("%s (%s)", reason, detail)
}

// Violation converts a broken result into a report line.
func (r ResolutionResult) Violation() Violation {
	return Violation{
		File:   r.Ref.Source,
		Line:   r.Ref.Line,
		Raw:    r.Ref.Raw,
		Reason: r.Reason,
		Detail: r.Detail,
	}
}
