package mdtext

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	t.Run("backtick fence and its delimiters are code", func(t *testing.T) {
		t.Parallel()
		text := "intro\n```go\n[x](y)\n```\noutro\n"
		lines := Split(text)
		want := []bool{false, true, true, true, false}
		if len(lines) != len(want) {
			t.Fatalf("expected %d lines, got %d", len(want), len(lines))
		}
		for i, l := range lines {
			if l.Code != want[i] {
				t.Errorf("line %d (%q): expected Code=%v", l.Num, l.Text, want[i])
			}
		}
	})

	t.Run("tilde fence is not closed by backticks", func(t *testing.T) {
		t.Parallel()
		text := "~~~\n```\n# not a heading\n~~~\n# heading\n"
		prose := Prose(text)
		if len(prose) != 1 || prose[0].Text != "# heading" || prose[0].Num != 5 {
			t.Errorf("unexpected prose lines %+v", prose)
		}
	})

	t.Run("shorter closing fence does not close", func(t *testing.T) {
		t.Parallel()
		text := "````\n```\nstill code\n````\nprose\n"
		prose := Prose(text)
		if len(prose) != 1 || prose[0].Text != "prose" {
			t.Errorf("unexpected prose lines %+v", prose)
		}
	})

	t.Run("unterminated fence runs to end of text", func(t *testing.T) {
		t.Parallel()
		if got := Prose("a\n```\nb\nc"); len(got) != 1 {
			t.Errorf("expected only the first line as prose, got %+v", got)
		}
	})

	t.Run("scanning resumes after a closing fence", func(t *testing.T) {
		t.Parallel()
		text := "```\nx\n```\n```\ny\n```\nz"
		prose := Prose(text)
		if len(prose) != 1 || prose[0].Num != 7 {
			t.Errorf("unexpected prose lines %+v", prose)
		}
	})

	t.Run("CRLF line endings", func(t *testing.T) {
		t.Parallel()
		lines := Split("a\r\nb\r\n")
		if len(lines) != 2 || lines[1].Text != "b" {
			t.Errorf("unexpected lines %+v", lines)
		}
	})

	t.Run("inline triple backticks with trailing code are not a fence", func(t *testing.T) {
		t.Parallel()
		prose := Prose("```x``` and more\nnext")
		if len(prose) != 2 {
			t.Errorf("expected two prose lines, got %+v", prose)
		}
	})
}

func TestMaskCodeSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no code", "see [a](b)", "see [a](b)"},
		{"single span", "x `[a](b)` y", "x" + strings.Repeat(" ", 10) + "y"},
		{"double backtick span", "``a ` b`` c", strings.Repeat(" ", 10) + "c"},
		{"unmatched run", "a ` b", "a ` b"},
		{"two spans", "`a` [l](t) `b`", "    [l](t)    "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MaskCodeSpans(tt.in)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if len(got) != len(tt.in) {
				t.Errorf("length changed: %d -> %d", len(tt.in), len(got))
			}
		})
	}
}

func TestMaskComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		open     bool
		want     string
		wantOpen bool
	}{
		{"no comment", "see [a](b)", false, "see [a](b)", false},
		{"inline comment", "a <!-- [x](y) --> b", false, "a" + strings.Repeat(" ", 17) + "b", false},
		{"comment opens", "a <!-- [x](y)", false, "a" + strings.Repeat(" ", 12), true},
		{"comment closes", "[x](y) --> [z](w)", true, strings.Repeat(" ", 11) + "[z](w)", false},
		{"line inside comment", "[x](y)", true, strings.Repeat(" ", 6), true},
		{"two comments", "<!--a-->[l](t)<!--b-->", false, "        [l](t)        ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, open := MaskComments(tt.in, tt.open)
			if got != tt.want || open != tt.wantOpen {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.want, tt.wantOpen, got, open)
			}
		})
	}
}
