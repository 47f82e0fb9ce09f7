// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads configuration for the jalai CLI and the mock
// backend.
//
// Configuration comes from a single YAML file named by the --config
// flag or the JALAI_CONFIG environment variable. A .env file in the
// working directory (or the file named by JALAI_ENV_FILE) is loaded
// into the process environment first, so JALAI_CONFIG and
// JALAI_API_URL can live there. Without a config file the built-in
// defaults apply.
//
// The file may contain development, staging, and production sections
// that override base values when the environment matches.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment is the deployment the client talks to.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the jalai client configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	API     APIConfig     `yaml:"api"`
	Paths   PathsConfig   `yaml:"paths"`
	Session SessionConfig `yaml:"session"`
	Cache   CacheConfig   `yaml:"cache"`

	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the per-environment sections.
type Overrides struct {
	API   *APIConfig   `yaml:"api,omitempty"`
	Paths *PathsConfig `yaml:"paths,omitempty"`
	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// APIConfig locates the backend.
type APIConfig struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api.
	BaseURL string `yaml:"base_url"`
	// Timeout bounds each request, as a Go duration string.
	Timeout string `yaml:"timeout"`
}

// PathsConfig locates local state.
type PathsConfig struct {
	// State holds the persisted session and the sealing identity.
	State string `yaml:"state"`
	// Cache holds the response cache snapshot.
	Cache string `yaml:"cache"`
	// Runtime holds data that should vanish with the login session
	// (the auth debug log). Defaults to $XDG_RUNTIME_DIR/jalai.
	Runtime string `yaml:"runtime"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// Seal encrypts the session file with an age identity.
	Seal bool `yaml:"seal"`
}

// CacheConfig controls the public catalog response cache.
type CacheConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	// TTL is the default entry lifetime, as a Go duration string.
	TTL string `yaml:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	runtimeRoot := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeRoot == "" {
		runtimeRoot = os.TempDir()
	}
	enabled := true
	return &Config{
		Environment: Development,
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: "30s",
		},
		Paths: PathsConfig{
			State:   filepath.Join(homeDir, ".config", "jalai"),
			Cache:   filepath.Join(homeDir, ".cache", "jalai"),
			Runtime: filepath.Join(runtimeRoot, "jalai"),
		},
		Session: SessionConfig{Seal: true},
		Cache:   CacheConfig{Enabled: &enabled, TTL: "5m"},
	}
}

// Load resolves the configuration: it loads the dotenv file, then the
// YAML file at path (or $JALAI_CONFIG when path is empty), then applies
// environment sections and the JALAI_API_URL override.
func Load(path string) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv("JALAI_CONFIG")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if environment := os.Getenv("JALAI_ENV"); environment != "" {
		cfg.Environment = Environment(environment)
	}
	cfg.applyEnvironmentOverrides()
	if baseURL := os.Getenv("JALAI_API_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotenv loads JALAI_ENV_FILE or ./.env. Variables already set in
// the process win. A missing default file is not an error.
func loadDotenv() error {
	path := os.Getenv("JALAI_ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.API != nil {
		if overrides.API.BaseURL != "" {
			c.API.BaseURL = overrides.API.BaseURL
		}
		if overrides.API.Timeout != "" {
			c.API.Timeout = overrides.API.Timeout
		}
	}
	if overrides.Paths != nil {
		if overrides.Paths.State != "" {
			c.Paths.State = overrides.Paths.State
		}
		if overrides.Paths.Cache != "" {
			c.Paths.Cache = overrides.Paths.Cache
		}
		if overrides.Paths.Runtime != "" {
			c.Paths.Runtime = overrides.Paths.Runtime
		}
	}
	if overrides.Cache != nil {
		if overrides.Cache.Enabled != nil {
			c.Cache.Enabled = overrides.Cache.Enabled
		}
		if overrides.Cache.TTL != "" {
			c.Cache.TTL = overrides.Cache.TTL
		}
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func (c *Config) expandVariables() {
	c.Paths.State = expandVars(c.Paths.State)
	c.Paths.Cache = expandVars(c.Paths.Cache)
	c.Paths.Runtime = expandVars(c.Paths.Runtime)
	c.API.BaseURL = expandVars(c.API.BaseURL)
}

// expandVars expands ${VAR} and ${VAR:-default}.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	switch c.Environment {
	case Development, Staging, Production:
	default:
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if parsed, err := url.Parse(c.API.BaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL))
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("api.timeout: %w", err))
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		errs = append(errs, fmt.Errorf("cache.ttl: %w", err))
	}
	if c.Paths.State == "" {
		errs = append(errs, errors.New("paths.state is required"))
	}
	return errors.Join(errs...)
}

// RequestTimeout returns the parsed API timeout.
func (c *Config) RequestTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.API.Timeout)
	return timeout
}

// CacheTTL returns the parsed cache TTL.
func (c *Config) CacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Cache.TTL)
	return ttl
}

// CacheEnabled reports whether the response cache is on.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// SessionPath is the persisted session file.
func (c *Config) SessionPath() string { return filepath.Join(c.Paths.State, "session.json") }

// IdentityPath is the age identity that seals the session file.
func (c *Config) IdentityPath() string { return filepath.Join(c.Paths.State, "identity.txt") }

// RuntimeStatePath is the ephemeral key/value file (auth debug log).
func (c *Config) RuntimeStatePath() string { return filepath.Join(c.Paths.Runtime, "session-scratch.json") }
