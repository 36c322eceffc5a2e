package anchor

import (
	"log/slog"
	"os"

	"github.com/nao1215/linkguard/internal/cache"
)

// Loader returns the text of the document at a canonical path.
type Loader func(path string) (string, error)

// Cache builds anchor indexes on first use and shares them between all
// documents of a run. It is safe for concurrent use; concurrent requests for
// the same file build the index once.
type Cache struct {
	load   Loader
	memo   cache.Memo[*Index]
	logger *slog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLoader replaces the default os.ReadFile loader, for example with one
// that serves already collected documents from memory.
func WithLoader(l Loader) CacheOption {
	return func(c *Cache) {
		c.load = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates an empty Cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		load: func(path string) (string, error) {
			data, err := os.ReadFile(path) //nolint:gosec // paths come from the scanned tree
			return string(data), err
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the index of the document at path.
func (c *Cache) Get(path string) (*Index, error) {
	return c.memo.Do(path, func() (*Index, error) {
		text, err := c.load(path)
		if err != nil {
			return nil, err
		}
		idx := Build(text)
		c.logger.Debug("indexed anchors", "path", path, "anchors", len(idx.Anchors))
		return idx, nil
	})
}

// Len returns the number of indexed files.
func (c *Cache) Len() int {
	return c.memo.Len()
}
