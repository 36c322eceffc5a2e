package vcs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/nao1215/linkguard/internal/retry"
)

func TestParseGitHubRepo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in          string
		owner, repo string
		ok          bool
	}{
		{"https://github.com/nao1215/linkguard", "nao1215", "linkguard", true},
		{"https://github.com/nao1215/linkguard/", "nao1215", "linkguard", true},
		{"https://github.com/nao1215/linkguard.git", "nao1215", "linkguard", true},
		{"https://gitlab.com/nao1215/linkguard", "", "", false},
		{"https://github.com/nao1215", "", "", false},
		{"https://github.com/a/b/c", "", "", false},
	}
	for _, tt := range tests {
		owner, repo, ok := ParseGitHubRepo(tt.in)
		if owner != tt.owner || repo != tt.repo || ok != tt.ok {
			t.Errorf("ParseGitHubRepo(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, owner, repo, ok, tt.owner, tt.repo, tt.ok)
		}
	}
}

// newTestGitHub points a GitHub remote at a test server.
func newTestGitHub(t *testing.T, handler http.Handler) *GitHub {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := gh.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	client.BaseURL = base

	return NewGitHub("o", "r",
		WithGitHubClient(client),
		WithGitHubPolicy(retry.Policy{Attempts: 3, Backoff: time.Millisecond}),
		WithAPIRate(0),
	)
}

func TestGitHubHasRef(t *testing.T) {
	t.Parallel()

	t.Run("known commit exists", func(t *testing.T) {
		t.Parallel()
		g := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/repos/o/r/commits/abc123" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte("abc123abc123abc123abc123abc123abc123abcd"))
		}))
		ok, err := g.HasRef(context.Background(), "abc123")
		if err != nil || !ok {
			t.Errorf("expected (true, nil), got (%v, %v)", ok, err)
		}
	})

	t.Run("422 means the ref does not exist", func(t *testing.T) {
		t.Parallel()
		g := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"No commit found for SHA: deadbeef"}`))
		}))
		ok, err := g.HasRef(context.Background(), "deadbeef")
		if err != nil || ok {
			t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
		}
	})

	t.Run("server errors are retried and then reported", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		g := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		ok, err := g.HasRef(context.Background(), "abc")
		if ok || err == nil {
			t.Errorf("expected (false, error), got (%v, %v)", ok, err)
		}
		if hits.Load() != 3 {
			t.Errorf("expected 3 attempts, got %d", hits.Load())
		}
	})

	t.Run("option-like refs are never sent", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		g := newTestGitHub(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
		ok, err := g.HasRef(context.Background(), "--upload-pack=x")
		if ok || err != nil || hits.Load() != 0 {
			t.Errorf("expected no request and (false, nil), got (%v, %v) after %d", ok, err, hits.Load())
		}
	})
}

func TestGitHubObjectKind(t *testing.T) {
	t.Parallel()

	g := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/contents/docs/guide.md"):
			_, _ = w.Write([]byte(`{"type":"file","name":"guide.md","path":"docs/guide.md"}`))
		case strings.HasSuffix(r.URL.Path, "/contents/docs"):
			_, _ = w.Write([]byte(`[{"type":"file","name":"guide.md","path":"docs/guide.md"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	}))

	tests := []struct {
		path string
		want ObjectKind
	}{
		{"docs/guide.md", KindBlob},
		{"docs", KindTree},
		{"docs/missing.md", KindNone},
	}
	for _, tt := range tests {
		got, err := g.ObjectKind(context.Background(), "abc", tt.path)
		if err != nil {
			t.Errorf("ObjectKind(%q): unexpected error %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("ObjectKind(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// initRepo creates a git repository with one commit, or skips the test
// when git is not installed.
func initRepo(t *testing.T) (dir, head string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir = t.TempDir()
	run := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
		return strings.TrimSpace(string(out))
	}
	run("init", "-q")
	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "docs", "guide.md"), []byte("# Guide\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-q", "-m", "init")
	return dir, run("rev-parse", "HEAD")
}

func TestGit(t *testing.T) {
	t.Parallel()

	dir, head := initRepo(t)
	g := NewGit(dir, WithGitTimeout(10*time.Second))
	ctx := context.Background()

	t.Run("check passes inside a work tree", func(t *testing.T) {
		t.Parallel()
		if err := g.Check(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("check fails outside a work tree", func(t *testing.T) {
		t.Parallel()
		err := NewGit(t.TempDir()).Check(ctx)
		if !errors.Is(err, ErrNotRepository) {
			t.Errorf("expected ErrNotRepository, got %v", err)
		}
	})

	t.Run("top level from a subdirectory", func(t *testing.T) {
		t.Parallel()
		want, err := filepath.EvalSymlinks(dir)
		if err != nil {
			t.Fatal(err)
		}
		got, err := NewGit(filepath.Join(dir, "docs")).TopLevel(ctx)
		if err != nil || got != want {
			t.Errorf("TopLevel() = (%q, %v), want %q", got, err, want)
		}
	})

	t.Run("head commit exists", func(t *testing.T) {
		t.Parallel()
		ok, err := g.HasCommit(ctx, head)
		if err != nil || !ok {
			t.Errorf("expected (true, nil), got (%v, %v)", ok, err)
		}
	})

	t.Run("unknown commit does not exist", func(t *testing.T) {
		t.Parallel()
		ok, err := g.HasCommit(ctx, "0123456789abcdef0123456789abcdef01234567")
		if err != nil || ok {
			t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
		}
	})

	t.Run("object kinds", func(t *testing.T) {
		t.Parallel()
		for path, want := range map[string]ObjectKind{
			"docs/guide.md":   KindBlob,
			"docs":            KindTree,
			"docs/missing.md": KindNone,
		} {
			got, err := g.ObjectKind(ctx, head, path)
			if err != nil || got != want {
				t.Errorf("ObjectKind(%q) = (%q, %v), want %q", path, got, err, want)
			}
		}
	})

	t.Run("read blob", func(t *testing.T) {
		t.Parallel()
		data, err := g.ReadBlob(ctx, head, "docs/guide.md")
		if err != nil || string(data) != "# Guide\n" {
			t.Errorf("unexpected blob %q, %v", data, err)
		}
	})

	t.Run("ls-remote without a remote fails", func(t *testing.T) {
		t.Parallel()
		r := g.LsRemote("origin", retry.Policy{Attempts: 1})
		if _, err := r.HasRef(ctx, "main"); err == nil {
			t.Error("expected an error for a missing remote")
		}
		if _, err := r.ObjectKind(ctx, "main", "x"); !errors.Is(err, ErrUnsupported) {
			t.Errorf("expected ErrUnsupported, got %v", err)
		}
	})
}
