// Package state centralizes filesystem locations for dakka runtime artifacts.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// StateDirEnv overrides the default runtime state root.
	StateDirEnv = "DAKKA_STATE_DIR"

	xdgStateHomeEnv = "XDG_STATE_HOME"
	appName         = "dakka"

	dirPerm = 0o755
)

// RootDir returns the runtime state root for dakka.
// Resolution order:
//  1. DAKKA_STATE_DIR (if set)
//  2. XDG_STATE_HOME/dakka (if XDG_STATE_HOME is set)
//  3. os.UserConfigDir()/dakka (cross-platform fallback)
func RootDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(StateDirEnv)); override != "" {
		return normalizePath(override)
	}

	if xdg := strings.TrimSpace(os.Getenv(xdgStateHomeEnv)); xdg != "" {
		root, err := normalizePath(xdg)
		if err != nil {
			return "", err
		}
		return filepath.Join(root, appName), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user config directory: %w", err)
	}
	root, err := normalizePath(configDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appName), nil
}

// ExportsDir returns the default directory compiled scripts are written to.
func ExportsDir() (string, error) {
	return InRoot("exports")
}

// DatabaseFile returns the SQLite file holding saved sessions.
func DatabaseFile() (string, error) {
	return InRoot("sessions.db")
}

// GlobalConfigFile returns the user-wide configuration file.
func GlobalConfigFile() (string, error) {
	return InRoot("config.yaml")
}

// LogsDir returns the logs directory under RootDir.
func LogsDir() (string, error) {
	return InRoot("logs")
}

// DefaultLogFile returns the structured log file `dakka serve` tees into.
func DefaultLogFile() (string, error) {
	dir, err := LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dakka.jsonl"), nil
}

// InRoot returns a path rooted under RootDir with additional path elements.
func InRoot(parts ...string) (string, error) {
	root, err := RootDir()
	if err != nil {
		return "", err
	}
	all := make([]string, 0, len(parts)+1)
	all = append(all, root)
	all = append(all, parts...)
	return filepath.Join(all...), nil
}

// EnsureParent creates the parent directory of path.
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	return nil
}

func normalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", path, err)
	}
	return filepath.Clean(absPath), nil
}
