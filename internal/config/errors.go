package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the file loader so that
// callers can use errors.Is() for programmatic handling.
var (
	// ErrNoRoot is returned when the tree root is empty.
	ErrNoRoot = errors.New("no root specified")

	// ErrNoSuffix is returned when no document suffix is configured.
	ErrNoSuffix = errors.New("no document suffix configured")

	// ErrInvalidTimeout is returned when a probe or git timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the worker pool size is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidAttempts is returned when the retry budget is not positive.
	ErrInvalidAttempts = errors.New("invalid attempts: must be positive")

	// ErrInvalidBackoff is returned when the backoff is negative.
	ErrInvalidBackoff = errors.New("invalid backoff: must be non-negative")

	// ErrInvalidRateLimit is returned when the probe rate is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidFormat is returned for an unknown report format.
	ErrInvalidFormat = errors.New("invalid report format: must be text, json or markdown")

	// ErrInvalidRepositoryURL is returned when the repository base URL is not
	// an absolute http(s) URL.
	ErrInvalidRepositoryURL = errors.New("invalid repository url")

	// ErrInvalidProxy is returned when the proxy is not a socks5:// URL.
	ErrInvalidProxy = errors.New("invalid proxy url: must be socks5://host:port")

	// ErrInvalidPattern is returned for a malformed exclude glob.
	ErrInvalidPattern = errors.New("invalid exclude pattern")

	// ErrInvalidRule is returned for a drift rule without id or with a bad regexp.
	ErrInvalidRule = errors.New("invalid drift rule")

	// ErrConfigNotFound is returned when an explicitly requested configuration
	// file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidConfigShape is returned when the configuration file does not
	// match the expected schema (unknown keys, wrong types, bad YAML).
	ErrInvalidConfigShape = errors.New("invalid configuration file shape")
)
