package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionGetters(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("getVersion() returned empty string")
	}
	if getCommit() == "" {
		t.Error("getCommit() returned empty string")
	}
	if len(getCommit()) > 7 && getCommit() != commit {
		t.Errorf("getCommit() = %q, want at most 7 characters", getCommit())
	}
	if getDate() == "" {
		t.Error("getDate() returned empty string")
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints full version info", func(t *testing.T) {
		t.Parallel()
		cmd := NewVersionCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{"linkguard version", "commit:", "built:", "go:"} {
			if !strings.Contains(out, want) {
				t.Errorf("output %q does not contain %q", out, want)
			}
		}
	})

	t.Run("short prints only the version", func(t *testing.T) {
		t.Parallel()
		cmd := NewVersionCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--short"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != getVersion() {
			t.Errorf("output = %q, want %q", got, getVersion())
		}
	})
}
