package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/linkguard/internal/model"
)

func TestAnchorsCommand(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"README.md": "# Project\n\n## Overview\n\n## Overview\n\n<a id=\"custom\"></a>\n\n```\n# not a heading\n```\n",
		"empty.md":  "no headings here\n",
	})
	readme := filepath.Join(root, "README.md")

	t.Run("text output", func(t *testing.T) {
		t.Parallel()
		code, stdout, stderr := runCLI(t, "anchors", readme)
		if code != exitPass {
			t.Fatalf("exit = %d, want %d (stderr: %s)", code, exitPass, stderr)
		}
		for _, want := range []string{"#project", "#overview ", "#overview-1", "#custom", "(html anchor)"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("stdout missing %q:\n%s", want, stdout)
			}
		}
		if strings.Contains(stdout, "not-a-heading") {
			t.Errorf("fenced heading listed:\n%s", stdout)
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()
		code, stdout, _ := runCLI(t, "anchors", "--json", readme, filepath.Join(root, "empty.md"))
		if code != exitPass {
			t.Fatalf("exit = %d, want %d", code, exitPass)
		}
		var docs []struct {
			File    string         `json:"file"`
			Anchors []model.Anchor `json:"anchors"`
		}
		if err := json.Unmarshal([]byte(stdout), &docs); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("len(docs) = %d, want 2", len(docs))
		}
		var slugs []string
		for _, a := range docs[0].Anchors {
			slugs = append(slugs, a.Slug)
		}
		if got := strings.Join(slugs, ","); got != "project,overview,overview-1,custom" {
			t.Errorf("slugs = %s", got)
		}
		if len(docs[1].Anchors) != 0 {
			t.Errorf("empty.md anchors = %v", docs[1].Anchors)
		}
	})

	t.Run("missing file exits 2", func(t *testing.T) {
		t.Parallel()
		code, _, _ := runCLI(t, "anchors", filepath.Join(root, "absent.md"))
		if code != exitFailure {
			t.Errorf("exit = %d, want %d", code, exitFailure)
		}
	})
}
