// loader_test.go — Tests for configuration loading cascade.
// Tests priority: defaults < config.yaml < .dakka.yaml < env vars < flags.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ozdemirkulaoglu/dakka/internal/state"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := Defaults()

	if cfg.Framework != "playwright" {
		t.Errorf("expected default framework 'playwright', got %q", cfg.Framework)
	}
	if cfg.ServerPort != 7891 {
		t.Errorf("expected default port 7891, got %d", cfg.ServerPort)
	}
	if !cfg.RelativeTimestamps {
		t.Error("expected relative timestamps by default")
	}
	if cfg.Tracked() != nil {
		t.Error("expected no tracked override by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), `
framework: cypress
out_dir: e2e
server_port: 9224
relative_timestamps: false
tracked_events: [mouseClick, redirect]
`)

	cfg := Defaults()
	if err := loadProjectConfig(&cfg, dir); err != nil {
		t.Fatalf("loadProjectConfig failed: %v", err)
	}

	if cfg.Framework != "cypress" {
		t.Errorf("expected framework 'cypress', got %q", cfg.Framework)
	}
	if cfg.OutDir != "e2e" {
		t.Errorf("expected out_dir 'e2e', got %q", cfg.OutDir)
	}
	if cfg.ServerPort != 9224 {
		t.Errorf("expected port 9224, got %d", cfg.ServerPort)
	}
	if cfg.RelativeTimestamps {
		t.Error("expected relative timestamps to be false")
	}
	tracked := cfg.Tracked()
	if !tracked[types.EventMouseClick] || !tracked[types.EventRedirect] || tracked[types.EventKeyDown] {
		t.Errorf("unexpected tracked set %v", tracked)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unset log_level should keep default, got %q", cfg.LogLevel)
	}
}

func TestLoadProjectConfigMissing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg := Defaults()
	if err := loadProjectConfig(&cfg, dir); err != nil {
		t.Fatalf("missing config should not error, got: %v", err)
	}
	if cfg.ServerPort != 7891 {
		t.Errorf("expected default port, got %d", cfg.ServerPort)
	}
}

func TestLoadProjectConfigInvalidYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), "framework: [unterminated")

	cfg := Defaults()
	if err := loadProjectConfig(&cfg, dir); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadGlobalConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "server_port: 9226\nlog_level: debug\n")

	cfg := Defaults()
	if err := loadGlobalConfig(&cfg, path); err != nil {
		t.Fatalf("loadGlobalConfig failed: %v", err)
	}
	if cfg.ServerPort != 9226 {
		t.Errorf("expected port 9226, got %d", cfg.ServerPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level 'debug', got %q", cfg.LogLevel)
	}
}

func TestLoadEnvVars(t *testing.T) {
	// Cannot be parallel due to env manipulation
	t.Setenv("DAKKA_FRAMEWORK", "dakka")
	t.Setenv("DAKKA_PORT", "9225")
	t.Setenv("DAKKA_LOG_LEVEL", "warn")
	t.Setenv("DAKKA_TRACKED_EVENTS", "keydown, keyup")
	t.Setenv("DAKKA_ABSOLUTE_TIMESTAMPS", "1")

	cfg := Defaults()
	loadEnvVars(&cfg)

	if cfg.Framework != "dakka" {
		t.Errorf("expected framework 'dakka', got %q", cfg.Framework)
	}
	if cfg.ServerPort != 9225 {
		t.Errorf("expected port 9225, got %d", cfg.ServerPort)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log level 'warn', got %q", cfg.LogLevel)
	}
	if len(cfg.TrackedEvents) != 2 || cfg.TrackedEvents[1] != "keyup" {
		t.Errorf("expected [keydown keyup], got %v", cfg.TrackedEvents)
	}
	if cfg.RelativeTimestamps {
		t.Error("expected absolute timestamps")
	}
}

func TestLoadEnvVarsInvalidPort(t *testing.T) {
	t.Setenv("DAKKA_PORT", "notanumber")

	cfg := Defaults()
	loadEnvVars(&cfg)

	// Should keep default on invalid input
	if cfg.ServerPort != 7891 {
		t.Errorf("expected default port on invalid env, got %d", cfg.ServerPort)
	}
}

func TestConfigPriorityOrder(t *testing.T) {
	// Cannot be parallel due to env manipulation
	root := t.TempDir()
	t.Setenv(state.StateDirEnv, root)
	writeFile(t, filepath.Join(root, "config.yaml"), "framework: puppeteer\nserver_port: 9000\nlog_level: error\n")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), "server_port: 9224\nframework: cypress\n")

	t.Setenv("DAKKA_PORT", "9225")

	cfg, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != 9225 {
		t.Errorf("expected env port 9225 to override project, got %d", cfg.ServerPort)
	}
	if cfg.Framework != "cypress" {
		t.Errorf("expected project framework to override global, got %q", cfg.Framework)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected global log level, got %q", cfg.LogLevel)
	}
}

func TestFlagOverrides(t *testing.T) {
	t.Setenv(state.StateDirEnv, t.TempDir())
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), "framework: cypress\n")

	overrides := &FlagOverrides{
		Framework:  strPtr("all"),
		ServerPort: intPtr(9999),
		OutDir:     strPtr("out"),
	}
	cfg, err := Load(dir, overrides)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Framework != "all" {
		t.Errorf("expected flag framework 'all', got %q", cfg.Framework)
	}
	if cfg.ServerPort != 9999 {
		t.Errorf("expected flag port 9999, got %d", cfg.ServerPort)
	}
	if cfg.OutDir != "out" {
		t.Errorf("expected flag out dir, got %q", cfg.OutDir)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv(state.StateDirEnv, t.TempDir())
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), "framework: selenium\n")

	if _, err := Load(dir, nil); err == nil {
		t.Error("framework 'selenium' should be rejected")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	for name, mutate := range map[string]func(*Config){
		"port zero":     func(c *Config) { c.ServerPort = 0 },
		"port too big":  func(c *Config) { c.ServerPort = 70000 },
		"bad framework": func(c *Config) { c.Framework = "webdriver" },
		"bad level":     func(c *Config) { c.LogLevel = "loud" },
		"bad event":     func(c *Config) { c.TrackedEvents = []string{"scroll"} },
	} {
		cfg := Defaults()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	for _, f := range []string{"all", "cypress", "Playwright", "puppeteer", "dakka"} {
		cfg := Defaults()
		cfg.Framework = f
		if err := cfg.Validate(); err != nil {
			t.Errorf("framework %q should be valid, got: %v", f, err)
		}
	}
}

// Helper functions for creating pointers to values
func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
