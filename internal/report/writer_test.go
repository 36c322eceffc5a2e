package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/linkguard/internal/model"
)

func brokenResult(source string, line int, raw string, reason model.Reason, detail string) model.ResolutionResult {
	return model.Broken(model.Reference{Source: source, Line: line, Raw: raw}, reason, detail)
}

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.Report {
	return Aggregate(Input{
		Root:       "/repo",
		Documents:  3,
		References: 12,
		Results: []model.ResolutionResult{
			model.OK(model.Reference{Source: "README.md", Line: 1, Raw: "docs/guide.md"}),
			brokenResult("docs/guide.md", 9, "https://example.com/gone", model.ReasonBrokenURL, "HTTP 404 Not Found"),
			brokenResult("README.md", 4, "docs/missing.md", model.ReasonMissingPath, "docs/missing.md"),
		},
	})
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	t.Run("sorts and deduplicates", func(t *testing.T) {
		t.Parallel()

		r := Aggregate(Input{
			Results: []model.ResolutionResult{
				brokenResult("b.md", 1, "#x", model.ReasonMissingAnchor, "#x"),
				brokenResult("a.md", 7, "x.md", model.ReasonMissingPath, "x.md"),
				brokenResult("a.md", 2, "x.md", model.ReasonMissingPath, "x.md"),
				model.OK(model.Reference{Source: "a.md", Raw: "ok.md"}),
			},
			Extra: []model.Violation{
				{File: "a.md", Line: 3, Raw: "docs/old/", Reason: model.ReasonStaleReference, Detail: "DOC-001: use docs/new/"},
			},
		})

		want := []string{
			"a.md :: docs/old/ -> stale reference (DOC-001: use docs/new/)",
			"a.md :: x.md -> missing path (x.md)",
			"b.md :: #x -> missing anchor (#x)",
		}
		got := r.Lines()
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
			}
		}
		if r.Violations[1].Line != 2 {
			t.Errorf("expected the first occurrence line 2, got %d", r.Violations[1].Line)
		}
		if ExitCode(r) != 1 {
			t.Errorf("expected exit code 1, got %d", ExitCode(r))
		}
	})

	t.Run("empty run passes", func(t *testing.T) {
		t.Parallel()

		r := Aggregate(Input{})
		if !r.Passed() || ExitCode(r) != 0 {
			t.Error("expected a passing report")
		}
		if r.Digest != Digest(nil) || len(r.Digest) != 64 {
			t.Errorf("unexpected digest %q", r.Digest)
		}
	})

	t.Run("digest depends only on violation lines", func(t *testing.T) {
		t.Parallel()

		a := createTestReport()
		b := Aggregate(Input{
			Documents: 99,
			Results: []model.ResolutionResult{
				brokenResult("README.md", 40, "docs/missing.md", model.ReasonMissingPath, "docs/missing.md"),
				brokenResult("docs/guide.md", 1, "https://example.com/gone", model.ReasonBrokenURL, "HTTP 404 Not Found"),
			},
		})
		if a.Digest != b.Digest {
			t.Errorf("expected equal digests, got %s and %s", a.Digest, b.Digest)
		}
		if a.Digest == Digest(nil) {
			t.Error("expected digest to differ from the empty report")
		}
	})
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes failing verdict", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Link check FAILED: 2 violation(s)\n" +
			"  - README.md :: docs/missing.md -> missing path (docs/missing.md)\n" +
			"  - docs/guide.md :: https://example.com/gone -> broken url (HTTP 404 Not Found)\n"
		if buf.String() != want {
			t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
		}
	})

	t.Run("writes passing verdict", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(Aggregate(Input{})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "Link check PASSED.\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("verbose adds hints and totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "line 4: "+model.ReasonMissingPath.Hint()) {
			t.Error("expected fix hint with line number")
		}
		if !strings.Contains(output, "Checked 12 reference(s) in 3 document(s).") {
			t.Error("expected run totals")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		Passed     bool     `json:"passed"`
		Violations []string `json:"violations"`
		Details    []struct {
			File   string `json:"file"`
			Line   int    `json:"line"`
			Reason string `json:"reason"`
		} `json:"details"`
		Digest     string `json:"digest"`
		Documents  int    `json:"documents"`
		References int    `json:"references"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Passed || len(got.Violations) != 2 || len(got.Details) != 2 {
		t.Errorf("unexpected report %+v", got)
	}
	if got.Details[0].File != "README.md" || got.Details[0].Line != 4 || got.Details[0].Reason != "missing path" {
		t.Errorf("unexpected first detail %+v", got.Details[0])
	}
	if got.Documents != 3 || got.References != 12 || len(got.Digest) != 64 {
		t.Errorf("unexpected totals %+v", got)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Error("expected trailing newline")
	}
	if !strings.Contains(buf.String(), " -> missing path") {
		t.Errorf("expected unescaped arrows, got %s", buf.String())
	}

	t.Run("passing report has empty arrays", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(Aggregate(Input{})); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `"violations":[]`) || !strings.Contains(buf.String(), `"details":[]`) {
			t.Errorf("expected empty arrays, got %s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"# Link Check Report",
		"[!CAUTION]",
		"`docs/missing.md`",
		"missing path (docs/missing.md)",
		"mermaid",
		model.ReasonBrokenURL.Hint(),
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	t.Run("passing report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(Aggregate(Input{})); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "[!TIP]") || !strings.Contains(buf.String(), "No broken references.") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

func TestWritersAreDeterministic(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"text", "json", "markdown"} {
		var a, b bytes.Buffer
		wa, err := NewWriter(format, &a, true)
		if err != nil {
			t.Fatal(err)
		}
		wb, _ := NewWriter(format, &b, true)
		if _, err := wa.Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if _, err := wb.Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		if a.String() != b.String() {
			t.Errorf("%s output differs between runs", format)
		}
	}

	if _, err := NewWriter("xml", &bytes.Buffer{}, false); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
	}
}
