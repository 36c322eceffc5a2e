package main

import (
	"testing"

	"github.com/nao1215/linkguard/internal/watch"
)

func TestNewWatchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewWatchCmd()

	t.Run("external probing is off by default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("external")
		if flag == nil {
			t.Fatal("expected external flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has debounce flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("debounce")
		if flag == nil {
			t.Fatal("expected debounce flag")
		}
		if flag.DefValue != watch.DefaultDebounce.String() {
			t.Errorf("expected default %q, got %q", watch.DefaultDebounce, flag.DefValue)
		}
	})

	t.Run("shares check flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"root", "config", "strict", "repository", "offline"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}
