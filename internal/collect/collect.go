package collect

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nao1215/linkguard/internal/model"
)

// Collector finds eligible documents under a tree root.
type Collector struct {
	root            string
	suffixes        []string
	excludeDirs     map[string]struct{}
	excludePatterns []string
	logger          *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithSuffixes sets the eligible file suffixes. Matching ignores case.
func WithSuffixes(suffixes []string) Option {
	return func(c *Collector) {
		c.suffixes = make([]string, 0, len(suffixes))
		for _, s := range suffixes {
			c.suffixes = append(c.suffixes, strings.ToLower(s))
		}
	}
}

// WithExcludeDirs sets directory names skipped anywhere below the root.
func WithExcludeDirs(names []string) Option {
	return func(c *Collector) {
		c.excludeDirs = make(map[string]struct{}, len(names))
		for _, n := range names {
			c.excludeDirs[n] = struct{}{}
		}
	}
}

// WithExcludePatterns sets glob patterns matched against root-relative
// slash paths.
func WithExcludePatterns(patterns []string) Option {
	return func(c *Collector) {
		c.excludePatterns = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// New creates a Collector for the tree at root. The root is made absolute
// and symlinks in it are resolved, so document paths are canonical.
func New(root string, opts ...Option) (*Collector, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotFound, root, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotFound, root, err)
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	c := &Collector{
		root:     canonical,
		suffixes: []string{".md", ".markdown"},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Root returns the canonical tree root.
func (c *Collector) Root() string {
	return c.root
}

// Collect returns the documents under roots, which are directories or files
// relative to the tree root. No roots means the whole tree. Files named
// explicitly are collected regardless of their suffix, but not from inside
// an excluded directory.
func (c *Collector) Collect(ctx context.Context, roots []string) ([]*model.Document, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	found := make(map[string]struct{})
	for _, r := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start, err := c.resolveRoot(r)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(start)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, r)
		}
		if !info.IsDir() {
			if c.inExcludedDir(c.Rel(start)) {
				c.logger.Debug("skipping file in excluded directory", "path", r)
				continue
			}
			found[start] = struct{}{}
			continue
		}
		if err := c.walk(ctx, start, found); err != nil {
			return nil, err
		}
	}

	docs := make([]*model.Document, 0, len(found))
	for p := range found {
		rel := c.Rel(p)
		if c.excludedPath(rel) {
			continue
		}
		data, err := os.ReadFile(p) //nolint:gosec // paths come from walking the tree root
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", rel, err)
		}
		docs = append(docs, model.NewDocument(p, rel, string(data)))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Rel < docs[j].Rel })

	c.logger.Debug("collected documents", "root", c.root, "count", len(docs))
	return docs, nil
}

// Rel returns p relative to the tree root with forward slashes.
func (c *Collector) Rel(p string) string {
	rel, err := filepath.Rel(c.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// Eligible reports whether the root-relative slash path rel would be
// collected by a walk.
func (c *Collector) Eligible(rel string) bool {
	return c.hasSuffix(rel) && !c.excludedPath(rel) && !c.inExcludedDir(rel)
}

// inExcludedDir reports whether any directory segment of rel is excluded.
func (c *Collector) inExcludedDir(rel string) bool {
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if c.excludedDir(path.Base(dir)) {
			return true
		}
	}
	return false
}

func (c *Collector) resolveRoot(r string) (string, error) {
	p := filepath.Join(c.root, filepath.FromSlash(r))
	if filepath.IsAbs(r) {
		p = filepath.Clean(r)
	}
	if rel, err := filepath.Rel(c.root, p); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, r)
	}
	return p, nil
}

func (c *Collector) walk(ctx context.Context, start string, found map[string]struct{}) error {
	return filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == start {
				return fmt.Errorf("%w: %v", ErrRootNotFound, err)
			}
			c.logger.Warn("skipping unreadable path", "path", p, "error", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != start && c.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if c.hasSuffix(p) {
			found[p] = struct{}{}
		}
		return nil
	})
}

func (c *Collector) hasSuffix(p string) bool {
	lower := strings.ToLower(p)
	for _, s := range c.suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

func (c *Collector) excludedDir(name string) bool {
	_, ok := c.excludeDirs[name]
	return ok
}

func (c *Collector) excludedPath(rel string) bool {
	for _, pattern := range c.excludePatterns {
		if matchPattern(pattern, rel) {
			return true
		}
	}
	return false
}

// matchPattern checks if a root-relative slash path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing /* or /** to match everything below a directory
//
// Examples:
//   - "docs/archive/*" matches "docs/archive/2019/notes.md"
//   - "*.draft.md" matches "docs/intro.draft.md"
func matchPattern(pattern, rel string) bool {
	for _, suffix := range []string{"/**", "/*"} {
		if strings.HasSuffix(pattern, suffix) {
			prefix := strings.TrimSuffix(pattern, suffix)
			if strings.HasPrefix(rel, prefix+"/") || rel == prefix {
				return true
			}
		}
	}

	if matched, err := path.Match(pattern, rel); err == nil && matched {
		return true
	}

	// Patterns without a separator also match the file name alone.
	if !strings.Contains(pattern, "/") {
		if matched, err := path.Match(pattern, path.Base(rel)); err == nil && matched {
			return true
		}
	}
	return false
}
