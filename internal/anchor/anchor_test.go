package anchor

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain words", "Getting Started", "getting-started"},
		{"punctuation removed", "What's new? (v2.0)", "whats-new-v20"},
		{"hyphen kept", "Pre-flight checks", "pre-flight-checks"},
		{"spaced hyphen collapses", "Install - Linux", "install-linux"},
		{"underscores stripped", "snake_case_name", "snakecasename"},
		{"inline html dropped", "Setup <small>optional</small>", "setup-optional"},
		{"inline code ticks dropped", "The `--verbose` flag", "the-verbose-flag"},
		{"leading and trailing hyphens trimmed", "-- Intro --", "intro"},
		{"unicode letters kept", "Übersicht Café", "übersicht-café"},
		{"fullwidth normalized", "ＡＢＣ １２３", "abc-123"},
		{"japanese kept", "概要 と 使い方", "概要-と-使い方"},
		{"emoji dropped", "🚀 Launch", "launch"},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugifyIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Getting Started",
		"What's new? (v2.0)",
		"The `--verbose` flag",
		"Übersicht Café",
		"ＡＢＣ １２３",
		"snake_case  and   spaces",
		"overview-1",
		"<b>Bold</b> -- move",
	}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestParseHeading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line  string
		level int
		text  string
		ok    bool
	}{
		{"# Title", 1, "Title", true},
		{"###### Deep", 6, "Deep", true},
		{"## Closed ##", 2, "Closed", true},
		{"   ### Indented", 3, "Indented", true},
		{"    # Code block", 0, "", false},
		{"####### Seven", 0, "", false},
		{"#NoSpace", 0, "", false},
		{"#", 0, "", false},
		{"## ##", 0, "", false},
		{"plain text", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			level, text, ok := ParseHeading(tt.line)
			if ok != tt.ok || level != tt.level || text != tt.text {
				t.Errorf("ParseHeading(%q) = (%d, %q, %v), want (%d, %q, %v)",
					tt.line, level, text, ok, tt.level, tt.text, tt.ok)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("duplicate headings get numeric suffixes in order", func(t *testing.T) {
		t.Parallel()
		idx := Build("# Overview\ntext\n## Overview\n### Overview\n")
		want := []string{"overview", "overview-1", "overview-2"}
		if len(idx.Anchors) != len(want) {
			t.Fatalf("expected %d anchors, got %+v", len(want), idx.Anchors)
		}
		for i, w := range want {
			if idx.Anchors[i].Slug != w {
				t.Errorf("anchor %d: expected %q, got %q", i, w, idx.Anchors[i].Slug)
			}
		}
		if idx.Anchors[1].Heading.Line != 3 {
			t.Errorf("expected second anchor on line 3, got %d", idx.Anchors[1].Heading.Line)
		}
	})

	t.Run("headings inside fences are ignored", func(t *testing.T) {
		t.Parallel()
		idx := Build("```sh\n# comment\n```\n# Real\n~~~\n## Fake\n~~~\n## After\n")
		if idx.Has("comment") || idx.Has("fake") {
			t.Error("fenced lines produced anchors")
		}
		if !idx.Has("real") || !idx.Has("after") {
			t.Errorf("expected real and after, got %v", idx.Slugs())
		}
	})

	t.Run("headings with empty slugs produce no anchor", func(t *testing.T) {
		t.Parallel()
		idx := Build("# !!!\n# Next\n")
		if len(idx.Headings) != 2 {
			t.Errorf("expected both headings recorded, got %d", len(idx.Headings))
		}
		if len(idx.Anchors) != 1 || idx.Anchors[0].Slug != "next" {
			t.Errorf("unexpected anchors %+v", idx.Anchors)
		}
	})

	t.Run("explicit html anchors are included verbatim", func(t *testing.T) {
		t.Parallel()
		idx := Build("<a name=\"Legacy_Anchor\"></a>\n<div id=\"custom\">x</div>\n`<a id=\"code\">`\n")
		if !idx.Has("Legacy_Anchor") || !idx.Has("custom") {
			t.Errorf("expected html anchors, got %v", idx.Slugs())
		}
		if idx.Has("code") {
			t.Error("anchor inside a code span was indexed")
		}
	})

	t.Run("nil index has nothing", func(t *testing.T) {
		t.Parallel()
		var idx *Index
		if idx.Has("x") {
			t.Error("nil index reported an anchor")
		}
	})
}

func TestCache(t *testing.T) {
	t.Parallel()

	t.Run("reads from disk once", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "guide.md")
		if err := os.WriteFile(path, []byte("## Setup\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		var loads atomic.Int32
		c := NewCache(WithLoader(func(p string) (string, error) {
			loads.Add(1)
			data, err := os.ReadFile(p)
			return string(data), err
		}))

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				idx, err := c.Get(path)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if !idx.Has("setup") {
					t.Error("expected setup anchor")
				}
			}()
		}
		wg.Wait()

		if loads.Load() != 1 {
			t.Errorf("expected one load, got %d", loads.Load())
		}
		if c.Len() != 1 {
			t.Errorf("expected one cached file, got %d", c.Len())
		}
	})

	t.Run("load errors are returned", func(t *testing.T) {
		t.Parallel()
		c := NewCache()
		_, err := c.Get(filepath.Join(t.TempDir(), "missing.md"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected ErrNotExist, got %v", err)
		}
	})
}
