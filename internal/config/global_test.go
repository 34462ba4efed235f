package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hjiang13/bibtexmate/internal/catalog"
)

// isolateEnv points XDG_CONFIG_HOME at a temp dir and clears overrides.
func isolateEnv(t *testing.T) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range Keys() {
		t.Setenv(EnvPrefix+strings.ToUpper(key), "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/bibmate/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "bibmate", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	dir := isolateEnv(t)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	d := Defaults()
	if cfg.CatalogURL != catalog.BaseURL || cfg.Workers != d.Workers || cfg.Threshold != catalog.DefaultThreshold {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.VisitsDB != filepath.Join(dir, "data", "bibmate", "visits.db") {
		t.Errorf("VisitsDB = %q", cfg.VisitsDB)
	}
	if timeout, _ := cfg.TimeoutDuration(); timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", timeout)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	dir := isolateEnv(t)
	writeConfig(t, dir, `mailto: dev@example.org
timeout: 3s
workers: 8
threshold: 0.9
format: ris
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.Mailto != "dev@example.org" || cfg.Workers != 8 || cfg.Threshold != 0.9 {
		t.Errorf("cfg = %+v", cfg)
	}
	if f, _ := cfg.ParsedFormat(); f != catalog.RIS {
		t.Errorf("format = %v, want RIS", f)
	}
	if cfg.ResolverURL != catalog.ResolverURL {
		t.Errorf("unset resolver_url should default, got %q", cfg.ResolverURL)
	}
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	dir := isolateEnv(t)
	writeConfig(t, dir, "workers: 8\nformat: ris\n")
	t.Setenv("BIBMATE_WORKERS", "2")
	t.Setenv("BIBMATE_FORMAT", "mla")
	t.Setenv("BIBMATE_VISITS_DB", "~/counts.db")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.Workers != 2 || cfg.Format != "mla" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.VisitsDB == "~/counts.db" {
		t.Error("VisitsDB tilde should be expanded")
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"bad yaml", "workers: [", nil},
		{"bad timeout", "timeout: soon\n", nil},
		{"bad format", "format: apa\n", nil},
		{"bad threshold", "threshold: 1.5\n", nil},
		{"unreachable threshold", "threshold: 1\n", nil},
		{"bad env workers", "", map[string]string{"BIBMATE_WORKERS": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolateEnv(t)
			writeConfig(t, dir, tt.content)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadGlobalConfig(); err == nil {
				t.Error("LoadGlobalConfig() should fail")
			}
		})
	}
}

func TestGlobalConfigCache(t *testing.T) {
	dir := isolateEnv(t)
	writeConfig(t, dir, "workers: 3\n")

	cfg1, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, "workers: 5\n")

	cfg2, _ := LoadGlobalConfig()
	if cfg1 != cfg2 || cfg2.Workers != 3 {
		t.Errorf("cache not used: %d", cfg2.Workers)
	}

	ResetGlobalConfigCache()
	cfg3, _ := LoadGlobalConfig()
	if cfg3.Workers != 5 {
		t.Errorf("after reset Workers = %d, want 5", cfg3.Workers)
	}
}

func TestSetAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", GlobalConfigFile)

	cfg := &GlobalConfig{}
	if err := cfg.Set("threshold", "0.75"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Set("nope", "x"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Set(unknown) error = %v, want ErrInvalidConfig", err)
	}
	if err := SaveGlobalConfig(path, cfg); err != nil {
		t.Fatalf("SaveGlobalConfig() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Threshold != 0.75 || loaded.Workers != 0 {
		t.Errorf("loaded = %+v, want only threshold set", loaded)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got := ExpandPath("~/x.db"); got != filepath.Join(home, "x.db") {
		t.Errorf("ExpandPath(~/x.db) = %q", got)
	}
	if got := ExpandPath("/abs/x.db"); got != "/abs/x.db" {
		t.Errorf("ExpandPath(/abs/x.db) = %q", got)
	}
}

func TestGet(t *testing.T) {
	cfg := Defaults()
	if v, err := cfg.Get("workers"); err != nil || v != "4" {
		t.Errorf("Get(workers) = %q, %v", v, err)
	}
	if v, _ := cfg.Get("threshold"); v != "0.8" {
		t.Errorf("Get(threshold) = %q", v)
	}
	if _, err := cfg.Get("pdf_root"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Get(unknown) error = %v", err)
	}
	if len(cfg.Values()) != len(Keys()) {
		t.Errorf("Values() and Keys() disagree: %d vs %d", len(cfg.Values()), len(Keys()))
	}
}
