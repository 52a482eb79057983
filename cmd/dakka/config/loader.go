// loader.go — Configuration loading with priority cascade.
// Priority: defaults < global config < project config < env vars < flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ozdemirkulaoglu/dakka/internal/state"
	"github.com/ozdemirkulaoglu/dakka/internal/types"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = ".dakka.yaml"

// Config holds all resolved configuration values.
type Config struct {
	Framework          string   `yaml:"framework"`
	OutDir             string   `yaml:"out_dir"`
	ServerPort         int      `yaml:"server_port"`
	LogLevel           string   `yaml:"log_level"`
	RelativeTimestamps bool     `yaml:"relative_timestamps"`
	TrackedEvents      []string `yaml:"tracked_events"`
	Database           string   `yaml:"database"`
}

// FlagOverrides holds values explicitly set via command-line flags.
// Nil pointer means the flag was not set (so lower-priority values are kept).
type FlagOverrides struct {
	Framework  *string
	OutDir     *string
	ServerPort *int
	LogLevel   *string
	Database   *string
}

// Defaults returns the base configuration.
// Empty OutDir and Database resolve under the state root at use.
func Defaults() Config {
	return Config{
		Framework:          string(types.FrameworkPlaywright),
		ServerPort:         7891,
		LogLevel:           "info",
		RelativeTimestamps: true,
	}
}

// Load builds the final configuration by applying the priority cascade:
// defaults < global (<state root>/config.yaml) < project (.dakka.yaml) < env vars < flags.
func Load(projectDir string, flags *FlagOverrides) (Config, error) {
	cfg := Defaults()

	if global, err := state.GlobalConfigFile(); err == nil {
		if err := loadGlobalConfig(&cfg, global); err != nil {
			return cfg, fmt.Errorf("global config: %w", err)
		}
	}

	if err := loadProjectConfig(&cfg, projectDir); err != nil {
		return cfg, fmt.Errorf("project config: %w", err)
	}

	loadEnvVars(&cfg)

	if flags != nil {
		applyFlags(&cfg, flags)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadGlobalConfig(cfg *Config, path string) error {
	return loadYAMLFile(cfg, path)
}

func loadProjectConfig(cfg *Config, dir string) error {
	return loadYAMLFile(cfg, filepath.Join(dir, ProjectFile))
}

// fileConfig uses pointers to distinguish "not set" from zero values.
type fileConfig struct {
	Framework          *string  `yaml:"framework"`
	OutDir             *string  `yaml:"out_dir"`
	ServerPort         *int     `yaml:"server_port"`
	LogLevel           *string  `yaml:"log_level"`
	RelativeTimestamps *bool    `yaml:"relative_timestamps"`
	TrackedEvents      []string `yaml:"tracked_events"`
	Database           *string  `yaml:"database"`
}

// loadYAMLFile merges the fields set in path into cfg.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- config paths are fixed locations
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Missing config file is fine
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.Framework != nil {
		cfg.Framework = *fc.Framework
	}
	if fc.OutDir != nil {
		cfg.OutDir = *fc.OutDir
	}
	if fc.ServerPort != nil {
		cfg.ServerPort = *fc.ServerPort
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.RelativeTimestamps != nil {
		cfg.RelativeTimestamps = *fc.RelativeTimestamps
	}
	if fc.TrackedEvents != nil {
		cfg.TrackedEvents = fc.TrackedEvents
	}
	if fc.Database != nil {
		cfg.Database = *fc.Database
	}
	return nil
}

// loadEnvVars applies environment variable overrides.
func loadEnvVars(cfg *Config) {
	if v := os.Getenv("DAKKA_FRAMEWORK"); v != "" {
		cfg.Framework = v
	}
	if v := os.Getenv("DAKKA_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("DAKKA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.ServerPort = port
		}
	}
	if v := os.Getenv("DAKKA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DAKKA_TRACKED_EVENTS"); v != "" {
		cfg.TrackedEvents = splitList(v)
	}
	if v := os.Getenv("DAKKA_DATABASE"); v != "" {
		cfg.Database = v
	}
	if os.Getenv("DAKKA_ABSOLUTE_TIMESTAMPS") == "1" {
		cfg.RelativeTimestamps = false
	}
}

// applyFlags applies command-line flag overrides (highest priority).
func applyFlags(cfg *Config, flags *FlagOverrides) {
	if flags.Framework != nil {
		cfg.Framework = *flags.Framework
	}
	if flags.OutDir != nil {
		cfg.OutDir = *flags.OutDir
	}
	if flags.ServerPort != nil {
		cfg.ServerPort = *flags.ServerPort
	}
	if flags.LogLevel != nil {
		cfg.LogLevel = *flags.LogLevel
	}
	if flags.Database != nil {
		cfg.Database = *flags.Database
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that configuration values are within acceptable ranges.
func (c Config) Validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("server_port must be 1-65535, got %d", c.ServerPort)
	}
	if c.Framework != "all" {
		if _, err := types.ParseFramework(c.Framework); err != nil {
			return fmt.Errorf("framework: %w", err)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	known := make(map[types.EventType]bool)
	for _, t := range types.EventTypes() {
		known[t] = true
	}
	for _, name := range c.TrackedEvents {
		if !known[types.EventType(name)] {
			return fmt.Errorf("tracked_events: unknown event type %q", name)
		}
	}
	return nil
}

// Tracked returns the event allow-list, or nil when the config leaves the
// recorder defaults in place.
func (c Config) Tracked() map[types.EventType]bool {
	if c.TrackedEvents == nil {
		return nil
	}
	tracked := make(map[types.EventType]bool, len(types.EventTypes()))
	for _, t := range types.EventTypes() {
		tracked[t] = false
	}
	for _, name := range c.TrackedEvents {
		tracked[types.EventType(name)] = true
	}
	return tracked
}
