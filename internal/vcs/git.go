package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/linkguard/internal/retry"
)

// defaultGitTimeout bounds a single git invocation.
const defaultGitTimeout = 30 * time.Second

// Git runs read-only git commands in a working tree.
type Git struct {
	dir     string
	timeout time.Duration
	logger  *slog.Logger
}

// GitOption configures a Git.
type GitOption func(*Git)

// WithGitTimeout sets the per-command timeout.
func WithGitTimeout(d time.Duration) GitOption {
	return func(g *Git) {
		g.timeout = d
	}
}

// WithGitLogger sets the logger.
func WithGitLogger(logger *slog.Logger) GitOption {
	return func(g *Git) {
		g.logger = logger
	}
}

// NewGit creates a Git rooted at dir.
func NewGit(dir string, opts ...GitOption) *Git {
	g := &Git{
		dir:     dir,
		timeout: defaultGitTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check verifies that git can be executed and that dir is a working tree.
func (g *Git) Check(ctx context.Context) error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("%w: %v", ErrGitUnavailable, err)
	}
	out, err := g.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(string(out)) != "true" {
		return fmt.Errorf("%w: %s", ErrNotRepository, g.dir)
	}
	return nil
}

// TopLevel returns the top-level directory of the working tree. Object
// paths in "ref:path" addresses are relative to it.
func (g *Git) TopLevel(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepository, g.dir)
	}
	top := filepath.FromSlash(strings.TrimSpace(string(out)))
	if resolved, err := filepath.EvalSymlinks(top); err == nil {
		top = resolved
	}
	return top, nil
}

// HasCommit implements Local.
func (g *Git) HasCommit(ctx context.Context, ref string) (bool, error) {
	if err := validRef(ref); err != nil {
		return false, nil
	}
	_, err := g.run(ctx, "cat-file", "-e", ref+"^{commit}")
	return exists(err)
}

// ObjectKind implements Local.
func (g *Git) ObjectKind(ctx context.Context, ref, path string) (ObjectKind, error) {
	if err := validRef(ref); err != nil {
		return KindNone, err
	}
	out, err := g.run(ctx, "cat-file", "-t", ref+":"+path)
	if ok, err := exists(err); !ok {
		return KindNone, err
	}
	return ObjectKind(strings.TrimSpace(string(out))), nil
}

// ReadBlob implements Local.
func (g *Git) ReadBlob(ctx context.Context, ref, path string) ([]byte, error) {
	if err := validRef(ref); err != nil {
		return nil, err
	}
	return g.run(ctx, "cat-file", "blob", ref+":"+path)
}

// LsRemote returns a Remote that asks `git ls-remote` about named refs.
func (g *Git) LsRemote(remote string, policy retry.Policy) Remote {
	return &lsRemote{git: g, remote: remote, policy: policy}
}

// run executes git with a per-call timeout and returns stdout.
func (g *Git) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // fixed subcommands, refs validated
	cmd.Dir = g.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	g.logger.Debug("git", "args", strings.Join(args, " "), "duration", time.Since(start), "error", err)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrGitUnavailable, err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("git %s: %w", args[0], ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// ExitError is a git command that ran and exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("git exited with status %d", e.Code)
	}
	return fmt.Sprintf("git exited with status %d: %s", e.Code, e.Stderr)
}

// exists maps a git error to an existence answer: a clean exit means the
// object exists, a non-zero exit means it does not, anything else is an error.
func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// lsRemote is a Remote backed by `git ls-remote --exit-code`.
type lsRemote struct {
	git    *Git
	remote string
	policy retry.Policy
}

// lsRemoteNoMatch is the status of `git ls-remote --exit-code` when no ref
// matched.
const lsRemoteNoMatch = 2

// HasRef implements Remote. Only named refs can be answered; ls-remote does
// not look up arbitrary commit ids.
func (r *lsRemote) HasRef(ctx context.Context, ref string) (bool, error) {
	if err := validRef(ref); err != nil {
		return false, nil
	}
	found := false
	err := r.policy.Do(ctx, func(ctx context.Context, _ int) (retry.Outcome, error) {
		_, err := r.git.run(ctx, "ls-remote", "--exit-code", r.remote, ref)
		if err == nil {
			found = true
			return retry.Success, nil
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code == lsRemoteNoMatch {
			return retry.Success, nil
		}
		if errors.Is(err, ErrGitUnavailable) {
			return retry.Fatal, err
		}
		return retry.Retryable, err
	})
	return found, err
}

// ObjectKind implements Remote.
func (r *lsRemote) ObjectKind(context.Context, string, string) (ObjectKind, error) {
	return KindNone, ErrUnsupported
}
