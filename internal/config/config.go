package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkguard"

	// DefaultTimeout bounds a single HTTP probe or remote API request.
	// It is applied per call, never to the run as a whole.
	DefaultTimeout = 10 * time.Second

	// DefaultAttempts is the number of attempts an external probe or a remote
	// ref lookup gets before the reference is reported as broken.
	DefaultAttempts = 3

	// DefaultBackoff is the fixed pause between two attempts.
	DefaultBackoff = 1 * time.Second

	// DefaultConcurrency is the number of references resolved in parallel.
	DefaultConcurrency = 8

	// DefaultGitTimeout bounds a single git subprocess invocation.
	DefaultGitTimeout = 30 * time.Second

	// DefaultRemote is the git remote queried by `git ls-remote`.
	DefaultRemote = "origin"

	// DefaultUserAgent identifies linkguard in HTTP requests so that site
	// operators can recognize link checker traffic in their logs.
	DefaultUserAgent = "linkguard/1.0 (+https://github.com/nao1215/linkguard)"

	// DefaultFormat is the report format used when none is requested.
	DefaultFormat = FormatText
)

// Report formats accepted by Config.Format.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// DefaultSuffixes returns the file suffixes collected when none are configured.
// Suffix matching is case-insensitive.
func DefaultSuffixes() []string {
	return []string{".md", ".markdown"}
}

// DefaultExcludeDirs returns directory names skipped anywhere in the tree:
// version-control internals, build output and dependency caches.
func DefaultExcludeDirs() []string {
	return []string{".git", "node_modules", "vendor", "bin", "obj", "dist", "build", ".venv", "__pycache__"}
}

// DefaultMutableRefs returns the refs validated against the working tree
// instead of version-control history.
func DefaultMutableRefs() []string {
	return []string{"main"}
}

// Rule is a drift rule: any line matching Pattern is reported as a stale
// reference together with Guidance.
type Rule struct {
	// ID is a short stable identifier such as "DOC-001".
	ID string `yaml:"id"`
	// Pattern is an RE2 regular expression.
	Pattern string `yaml:"pattern"`
	// Guidance tells the reader what to use instead.
	Guidance string `yaml:"guidance"`
}

// Config holds all configuration options for a linkguard run.
// It is populated from defaults, then the configuration file, then CLI flags,
// and passed down explicitly to every component.
type Config struct {
	// Root is the tree root. Root-relative paths in reports and
	// "/"-prefixed link targets are resolved against it.
	Root string

	// Roots are the directories or files (relative to Root) to collect.
	// Empty means Root itself.
	Roots []string

	// Suffixes are the eligible document suffixes.
	Suffixes []string

	// ExcludeDirs are directory names skipped anywhere in a path.
	ExcludeDirs []string

	// ExcludePatterns are glob patterns matched against root-relative slash paths.
	ExcludePatterns []string

	// Strict reports fragments pointing into non-text targets.
	Strict bool

	// ForbidRelativeLinks rejects every local-path link in favor of
	// canonical repository URLs.
	ForbidRelativeLinks bool

	// Concurrency is the size of the resolution worker pool.
	Concurrency int

	// RepositoryURL is the canonical repository base URL, for example
	// https://github.com/owner/repo. Links under it are validated as internal
	// repository references. Empty disables internal validation.
	RepositoryURL string

	// MutableRefs are refs validated against the working tree.
	MutableRefs []string

	// Remote is the git remote used for remote ref existence checks when the
	// repository is not hosted on GitHub.
	Remote string

	// GitTimeout bounds each git subprocess.
	GitTimeout time.Duration

	// GitHubToken authenticates GitHub API ref lookups. It is read from the
	// GITHUB_TOKEN environment variable and never from the config file.
	GitHubToken string

	// External enables network probing of external URLs.
	External bool

	// AllowPrefixes are URL prefixes accepted without any check.
	AllowPrefixes []string

	// Timeout bounds a single probe or API request.
	Timeout time.Duration

	// Attempts is the retry budget of a probe or remote ref lookup.
	Attempts int

	// Backoff is the fixed pause between attempts.
	Backoff time.Duration

	// UserAgent is sent with every probe.
	UserAgent string

	// ProxyURL routes probes through a SOCKS5 proxy (socks5://host:port).
	ProxyURL string

	// RateLimit caps probes per second across all hosts. Zero means unlimited.
	RateLimit float64

	// Rules are the drift rules applied to every document line.
	Rules []Rule

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// Format is the report format.
	Format string

	// OutputFile receives the report instead of stdout when set.
	OutputFile string

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// Record stores the run in the history database.
	Record bool

	// DBPath is the history database path. Empty means the XDG data dir.
	DBPath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Root:        ".",
		Suffixes:    DefaultSuffixes(),
		ExcludeDirs: DefaultExcludeDirs(),
		Concurrency: DefaultConcurrency,
		MutableRefs: DefaultMutableRefs(),
		Remote:      DefaultRemote,
		GitTimeout:  DefaultGitTimeout,
		External:    true,
		Timeout:     DefaultTimeout,
		Attempts:    DefaultAttempts,
		Backoff:     DefaultBackoff,
		UserAgent:   DefaultUserAgent,
		LogFormat:   "text",
		Format:      DefaultFormat,
	}
}

// ApplyFile overlays the values present in the configuration file on c.
// Zero values in the file leave the current value untouched.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if len(f.Roots) > 0 {
		c.Roots = f.Roots
	}
	if len(f.Suffixes) > 0 {
		c.Suffixes = f.Suffixes
	}
	if len(f.ExcludeDirs) > 0 {
		c.ExcludeDirs = f.ExcludeDirs
	}
	if len(f.ExcludePatterns) > 0 {
		c.ExcludePatterns = f.ExcludePatterns
	}
	if f.Strict {
		c.Strict = true
	}
	if f.ForbidRelativeLinks {
		c.ForbidRelativeLinks = true
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}

	r := f.Repository
	if r.URL != "" {
		c.RepositoryURL = r.URL
	}
	if len(r.MutableRefs) > 0 {
		c.MutableRefs = r.MutableRefs
	}
	if r.Remote != "" {
		c.Remote = r.Remote
	}
	if r.GitTimeout != 0 {
		c.GitTimeout = r.GitTimeout
	}

	e := f.External
	if e.Enabled != nil {
		c.External = *e.Enabled
	}
	if len(e.AllowPrefixes) > 0 {
		c.AllowPrefixes = e.AllowPrefixes
	}
	if e.Timeout != 0 {
		c.Timeout = e.Timeout
	}
	if e.Attempts != 0 {
		c.Attempts = e.Attempts
	}
	if e.Backoff != 0 {
		c.Backoff = e.Backoff
	}
	if e.UserAgent != "" {
		c.UserAgent = e.UserAgent
	}
	if e.Proxy != "" {
		c.ProxyURL = e.Proxy
	}
	if e.Rate != 0 {
		c.RateLimit = e.Rate
	}

	if f.History.Enabled {
		c.Record = true
	}
	if f.History.Path != "" {
		c.DBPath = f.History.Path
	}
	if len(f.Rules) > 0 {
		c.Rules = f.Rules
	}
}

// RepositoryBase returns RepositoryURL without a trailing slash.
func (c *Config) RepositoryBase() string {
	return strings.TrimRight(c.RepositoryURL, "/")
}

// EffectiveAllowPrefixes returns the configured allow-list plus the commit
// permalink prefix of the configured repository. Commit permalinks address
// immutable content.
func (c *Config) EffectiveAllowPrefixes() []string {
	prefixes := append([]string(nil), c.AllowPrefixes...)
	if base := c.RepositoryBase(); base != "" {
		prefixes = append(prefixes, base+"/commit/")
	}
	return prefixes
}

// IsMutableRef reports whether ref is validated against the working tree.
func (c *Config) IsMutableRef(ref string) bool {
	for _, m := range c.MutableRefs {
		if m == ref {
			return true
		}
	}
	return false
}

// XDGDataDir returns the XDG data directory for linkguard.
// On Linux: ~/.local/share/linkguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkguard.
// On Linux: ~/.config/linkguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HistoryDBPath returns the history database path, defaulting to the XDG data dir.
func (c *Config) HistoryDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(XDGDataDir(), "history.db")
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error, wrapped with
// the offending value where one exists.
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrNoRoot
	}
	if len(c.Suffixes) == 0 {
		return ErrNoSuffix
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.GitTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Attempts <= 0 {
		return ErrInvalidAttempts
	}
	if c.Backoff < 0 {
		return ErrInvalidBackoff
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	if c.RepositoryURL != "" {
		u, err := url.Parse(c.RepositoryURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidRepositoryURL, c.RepositoryURL)
		}
	}

	if c.ProxyURL != "" {
		u, err := url.Parse(c.ProxyURL)
		if err != nil || (u.Scheme != "socks5" && u.Scheme != "socks5h") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidProxy, c.ProxyURL)
		}
	}

	for _, p := range c.ExcludePatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}

	for _, r := range c.Rules {
		if r.ID == "" {
			return fmt.Errorf("%w: rule without id", ErrInvalidRule)
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.ID, err)
		}
	}

	return nil
}
