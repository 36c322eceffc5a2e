package model

import (
	"encoding/json"
	"testing"
)

func TestViolationString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    Violation
		want string
	}{
		{
			name: "with detail",
			v:    Violation{File: "README.md", Line: 3, Raw: "docs/x.md", Reason: ReasonMissingPath, Detail: "docs/x.md"},
			want: "README.md :: docs/x.md -> missing path (docs/x.md)",
		},
		{
			name: "without detail",
			v:    Violation{File: "a.md", Line: 1, Raw: "https://github.com/o/r/blob", Reason: ReasonInvalidInternalURL},
			want: "a.md :: https://github.com/o/r/blob -> invalid internal url",
		},
		{
			name: "line is not part of the string",
			v:    Violation{File: "a.md", Line: 99, Raw: "#x", Reason: ReasonMissingAnchor, Detail: "#x"},
			want: "a.md :: #x -> missing anchor (#x)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolutionResult(t *testing.T) {
	t.Parallel()

	ref := Reference{Source: "docs/a.md", Line: 7, Raw: "b.md#c"}

	ok := OK(ref)
	if ok.Status != StatusOK || ok.Reason != ReasonNone {
		t.Errorf("OK() = %+v", ok)
	}

	broken := Broken(ref, ReasonMissingAnchor, "docs/b.md#c")
	if broken.Status != StatusBroken {
		t.Errorf("Status = %v, want broken", broken.Status)
	}
	if got := broken.Explanation(); got != "missing anchor (docs/b.md#c)" {
		t.Errorf("Explanation() = %q", got)
	}

	v := broken.Violation()
	if v.File != "docs/a.md" || v.Line != 7 || v.Raw != "b.md#c" || v.Reason != ReasonMissingAnchor {
		t.Errorf("Violation() = %+v", v)
	}

	data, err := json.Marshal(broken)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["status"] != "broken" {
		t.Errorf("status JSON = %v, want \"broken\"", decoded["status"])
	}
}

func TestReasonHint(t *testing.T) {
	t.Parallel()

	for _, r := range []Reason{
		ReasonMissingPath, ReasonMissingAnchor, ReasonAnchorNotText, ReasonInvalidInternalURL,
		ReasonRefNotFound, ReasonObjectNotFound, ReasonKindMismatch, ReasonBrokenURL,
		ReasonRelativeForbidden, ReasonStaleReference,
	} {
		if r.Hint() == "" {
			t.Errorf("no hint for %q", r)
		}
	}
	if ReasonNone.Hint() != "" {
		t.Error("ReasonNone has a hint")
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	empty := &Report{}
	if !empty.Passed() {
		t.Error("empty report did not pass")
	}
	if len(empty.Lines()) != 0 {
		t.Errorf("Lines() = %v, want none", empty.Lines())
	}

	r := &Report{Violations: []Violation{
		{File: "a.md", Raw: "x.md", Reason: ReasonMissingPath, Detail: "x.md"},
		{File: "b.md", Raw: "#y", Reason: ReasonMissingAnchor, Detail: "#y"},
	}}
	if r.Passed() {
		t.Error("report with violations passed")
	}
	lines := r.Lines()
	if len(lines) != 2 || lines[0] != "a.md :: x.md -> missing path (x.md)" || lines[1] != "b.md :: #y -> missing anchor (#y)" {
		t.Errorf("Lines() = %v", lines)
	}
}

func TestIsMarkdownPath(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"README.md":      true,
		"docs/Guide.MD":  true,
		"notes.markdown": true,
		"a.mkd":          true,
		"main.go":        false,
		"docs/":          false,
		"image.png":      false,
		"archive.md.tar": false,
		"no-extension":   false,
	}
	for p, want := range tests {
		if got := IsMarkdownPath(p); got != want {
			t.Errorf("IsMarkdownPath(%q) = %v, want %v", p, got, want)
		}
	}

	doc := NewDocument("/r/docs/a.md", "docs/a.md", "# A\n")
	if doc.Kind != KindMarkdown || doc.Kind.String() != "markdown" {
		t.Errorf("Kind = %v", doc.Kind)
	}
	if txt := NewDocument("/r/notes.txt", "notes.txt", ""); txt.Kind != KindText {
		t.Errorf("Kind = %v, want text", txt.Kind)
	}
}

func TestKindStrings(t *testing.T) {
	t.Parallel()

	if RefInternalRepoURL.String() != "internal-repo-url" || RefKind(42).String() != "unknown" {
		t.Error("unexpected RefKind strings")
	}
	if SyntaxBareURL.String() != "bare-url" || Syntax(42).String() != "unknown" {
		t.Error("unexpected Syntax strings")
	}
}
