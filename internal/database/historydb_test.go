package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/linkguard/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "history.db"), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testReport(root string, lines ...string) *model.Report {
	r := &model.Report{Root: root, Documents: 2, References: 5, Digest: "d"}
	for _, l := range lines {
		r.Violations = append(r.Violations, model.Violation{File: "README.md", Raw: l, Reason: model.ReasonMissingPath, Detail: l})
	}
	return r
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "newdir", "subdir", "history.db")
		db, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %s, got %s", dbPath, db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing.db"), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})
}

func TestSaveAndListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	first := NewRun(testReport("/repo", "a.md"), at)
	second := NewRun(testReport("/repo"), at.Add(time.Hour))
	other := NewRun(testReport("/other", "x.md"), at.Add(2*time.Hour))
	for _, r := range []*Run{first, second, other} {
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun() error: %v", err)
		}
	}

	runs, err := db.ListRuns(ctx, "/repo", 0)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("expected newest first for /repo, got %+v", runs)
	}
	if !runs[0].Passed || runs[1].Passed {
		t.Error("unexpected verdicts")
	}
	if !runs[1].Timestamp.Equal(at) {
		t.Errorf("expected timestamp %v, got %v", at, runs[1].Timestamp)
	}
	if len(runs[1].Violations) != 1 || runs[1].Violations[0] != "README.md :: a.md -> missing path (a.md)" {
		t.Errorf("unexpected violations %v", runs[1].Violations)
	}
	if runs[0].Violations == nil || len(runs[0].Violations) != 0 {
		t.Errorf("expected empty violation list, got %#v", runs[0].Violations)
	}

	all, err := db.ListRuns(ctx, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != other.ID {
		t.Errorf("expected the two newest runs across roots, got %d", len(all))
	}

	got, err := db.GetRun(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got.Root != "/repo" || got.Documents != 2 || got.References != 5 || got.Digest != "d" {
		t.Errorf("unexpected run %+v", got)
	}

	if _, err := db.GetRun(ctx, "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	older := &Run{Violations: []string{"a", "b", "c"}}
	newer := &Run{Violations: []string{"c", "e", "d"}}
	d := Diff(older, newer)

	if len(d.Introduced) != 2 || d.Introduced[0] != "d" || d.Introduced[1] != "e" {
		t.Errorf("unexpected introduced %v", d.Introduced)
	}
	if len(d.Resolved) != 2 || d.Resolved[0] != "a" || d.Resolved[1] != "b" {
		t.Errorf("unexpected resolved %v", d.Resolved)
	}
}

func TestDiffLatest(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	if err := db.SaveRun(ctx, NewRun(testReport("/repo", "a.md", "b.md"), at)); err != nil {
		t.Fatal(err)
	}
	if _, err := db.DiffLatest(ctx, "/repo"); !errors.Is(err, ErrNotEnoughRuns) {
		t.Errorf("expected ErrNotEnoughRuns, got %v", err)
	}

	if err := db.SaveRun(ctx, NewRun(testReport("/repo", "b.md", "c.md"), at.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	d, err := db.DiffLatest(ctx, "/repo")
	if err != nil {
		t.Fatalf("DiffLatest() error: %v", err)
	}
	if len(d.Introduced) != 1 || d.Introduced[0] != "README.md :: c.md -> missing path (c.md)" {
		t.Errorf("unexpected introduced %v", d.Introduced)
	}
	if len(d.Resolved) != 1 || d.Resolved[0] != "README.md :: a.md -> missing path (a.md)" {
		t.Errorf("unexpected resolved %v", d.Resolved)
	}
}
