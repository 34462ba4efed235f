// Package config handles the global bibmate configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hjiang13/bibtexmate/internal/batch"
	"github.com/hjiang13/bibtexmate/internal/catalog"
)

// GlobalConfig represents configuration stored in ~/.config/bibmate/config.yml.
type GlobalConfig struct {
	Mailto      string  `yaml:"mailto,omitempty"`
	CatalogURL  string  `yaml:"catalog_url,omitempty"`
	ResolverURL string  `yaml:"resolver_url,omitempty"`
	Timeout     string  `yaml:"timeout,omitempty"`
	Workers     int     `yaml:"workers,omitempty"`
	Threshold   float64 `yaml:"threshold,omitempty"`
	Format      string  `yaml:"format,omitempty"`
	VisitsDB    string  `yaml:"visits_db,omitempty"`
	RateLimit   float64 `yaml:"rate_limit,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bibmate"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "BIBMATE_"
)

// ErrInvalidConfig is returned when a config value cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibmate/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// DefaultVisitsPath returns the default visit counter database path.
// Respects XDG_DATA_HOME, defaults to ~/.local/share/bibmate/visits.db.
func DefaultVisitsPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), GlobalConfigDir, "visits.db")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, GlobalConfigDir, "visits.db")
}

// Defaults returns a config with every value set to its default.
func Defaults() GlobalConfig {
	return GlobalConfig{
		CatalogURL:  catalog.BaseURL,
		ResolverURL: catalog.ResolverURL,
		Timeout:     catalog.DefaultTimeout.String(),
		Workers:     batch.DefaultWorkers,
		Threshold:   catalog.DefaultThreshold,
		Format:      "bibtex",
		VisitsDB:    DefaultVisitsPath(),
		RateLimit:   catalog.RateLimit,
	}
}

// LoadFile reads the config file as written, without env overrides or
// defaults. Returns an empty config (not an error) if the file doesn't exist.
func LoadFile(path string) (*GlobalConfig, error) {
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	return &cfg, nil
}

// LoadGlobalConfig loads the global configuration file, applies BIBMATE_*
// environment overrides, fills defaults, and validates the result.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := LoadFile(GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	cfg.VisitsDB = ExpandPath(cfg.VisitsDB)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// SaveGlobalConfig writes cfg to path, creating its directory.
func SaveGlobalConfig(path string, cfg *GlobalConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *GlobalConfig) fillDefaults() {
	d := Defaults()
	if c.CatalogURL == "" {
		c.CatalogURL = d.CatalogURL
	}
	if c.ResolverURL == "" {
		c.ResolverURL = d.ResolverURL
	}
	if c.Timeout == "" {
		c.Timeout = d.Timeout
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	if c.Threshold == 0 {
		c.Threshold = d.Threshold
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.VisitsDB == "" {
		c.VisitsDB = d.VisitsDB
	}
	if c.RateLimit == 0 {
		c.RateLimit = d.RateLimit
	}
}

// ApplyEnv overrides values from BIBMATE_* environment variables.
func (c *GlobalConfig) ApplyEnv() error {
	for _, key := range Keys() {
		value, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(key))
		if !ok || value == "" {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
	}
	return nil
}

// setters maps config keys onto field assignments.
var setters = map[string]func(c *GlobalConfig, v string) error{
	"mailto":       func(c *GlobalConfig, v string) error { c.Mailto = v; return nil },
	"catalog_url":  func(c *GlobalConfig, v string) error { c.CatalogURL = v; return nil },
	"resolver_url": func(c *GlobalConfig, v string) error { c.ResolverURL = v; return nil },
	"timeout":      func(c *GlobalConfig, v string) error { c.Timeout = v; return nil },
	"format":       func(c *GlobalConfig, v string) error { c.Format = v; return nil },
	"visits_db":    func(c *GlobalConfig, v string) error { c.VisitsDB = v; return nil },
	"workers": func(c *GlobalConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: workers must be an integer", ErrInvalidConfig)
		}
		c.Workers = n
		return nil
	},
	"threshold": func(c *GlobalConfig, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: threshold must be a number", ErrInvalidConfig)
		}
		c.Threshold = f
		return nil
	},
	"rate_limit": func(c *GlobalConfig, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: rate_limit must be a number", ErrInvalidConfig)
		}
		c.RateLimit = f
		return nil
	},
}

// Keys returns the recognized config keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a config value by key.
func (c *GlobalConfig) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q (valid: %s)", ErrInvalidConfig, key, strings.Join(Keys(), ", "))
	}
	return set(c, value)
}

// Values returns every config value as a string, keyed like Keys.
func (c *GlobalConfig) Values() map[string]string {
	return map[string]string{
		"mailto":       c.Mailto,
		"catalog_url":  c.CatalogURL,
		"resolver_url": c.ResolverURL,
		"timeout":      c.Timeout,
		"workers":      strconv.Itoa(c.Workers),
		"threshold":    strconv.FormatFloat(c.Threshold, 'g', -1, 64),
		"format":       c.Format,
		"visits_db":    c.VisitsDB,
		"rate_limit":   strconv.FormatFloat(c.RateLimit, 'g', -1, 64),
	}
}

// Get returns one config value by key.
func (c *GlobalConfig) Get(key string) (string, error) {
	v, ok := c.Values()[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown key %q (valid: %s)", ErrInvalidConfig, key, strings.Join(Keys(), ", "))
	}
	return v, nil
}

// TimeoutDuration parses the configured per-request timeout.
func (c *GlobalConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return catalog.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: timeout %q is not a positive duration", ErrInvalidConfig, c.Timeout)
	}
	return d, nil
}

// ParsedFormat returns the configured default citation format.
func (c *GlobalConfig) ParsedFormat() (catalog.Format, error) {
	if c.Format == "" {
		return catalog.BibTeX, nil
	}
	f, err := catalog.ParseFormat(c.Format)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return f, nil
}

// Validate checks that every set value is usable.
func (c *GlobalConfig) Validate() error {
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.ParsedFormat(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("%w: threshold must be within [0, 1)", ErrInvalidConfig)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must be positive", ErrInvalidConfig)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
