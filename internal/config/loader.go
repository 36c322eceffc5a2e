package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linkguard.yaml"

// File represents the structure of the .linkguard.yaml configuration file.
type File struct {
	Roots               []string       `yaml:"roots,omitempty"`
	Suffixes            []string       `yaml:"suffixes,omitempty"`
	ExcludeDirs         []string       `yaml:"exclude_dirs,omitempty"`
	ExcludePatterns     []string       `yaml:"exclude_patterns,omitempty"`
	Strict              bool           `yaml:"strict,omitempty"`
	ForbidRelativeLinks bool           `yaml:"forbid_relative_links,omitempty"`
	Concurrency         int            `yaml:"concurrency,omitempty"`
	Repository          RepositoryFile `yaml:"repository,omitempty"`
	External            ExternalFile   `yaml:"external,omitempty"`
	History             HistoryFile    `yaml:"history,omitempty"`
	Rules               []Rule         `yaml:"rules,omitempty"`
}

// RepositoryFile configures internal repository URL validation.
type RepositoryFile struct {
	URL         string        `yaml:"url,omitempty"`
	MutableRefs []string      `yaml:"mutable_refs,omitempty"`
	Remote      string        `yaml:"remote,omitempty"`
	GitTimeout  time.Duration `yaml:"git_timeout,omitempty"`
}

// ExternalFile configures external URL probing.
// Enabled is a pointer so that an explicit false can be told apart from absence.
type ExternalFile struct {
	Enabled       *bool         `yaml:"enabled,omitempty"`
	AllowPrefixes []string      `yaml:"allow_prefixes,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	Attempts      int           `yaml:"attempts,omitempty"`
	Backoff       time.Duration `yaml:"backoff,omitempty"`
	UserAgent     string        `yaml:"user_agent,omitempty"`
	Proxy         string        `yaml:"proxy,omitempty"`
	Rate          float64       `yaml:"rate,omitempty"`
}

// HistoryFile configures the run history database.
type HistoryFile struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// LoadConfigFile loads a configuration file.
// A missing file yields ErrConfigNotFound; a file that does not match the
// schema yields an error wrapping ErrInvalidConfigShape.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes configuration file contents in strict mode.
// An empty document is a valid, empty configuration.
func ParseConfig(data []byte) (*File, error) {
	var cf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil {
		if errors.Is(err, io.EOF) {
			return &cf, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfigShape, err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly (missing is an error)
// 2. Look for .linkguard.yaml in the tree root
// 3. Look for .linkguard.yaml in the current directory
// 4. Look for config.yaml in the XDG config directory
//
// It returns an empty path and a nil error when no file is found implicitly.
func FindConfigFile(configPath, root string) (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return configPath, nil
	}

	candidates := []string{filepath.Join(root, DefaultConfigFile)}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}
