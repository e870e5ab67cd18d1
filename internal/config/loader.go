// internal/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteStarter when a config file is already
// present and overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "depsweep", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "depsweep", "config.yaml")
}

// Load reads config from path, returning defaults if file doesn't exist
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ScanPaths = expandPaths(cfg.ScanPaths)

	return cfg, nil
}

func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// WriteStarter saves cfg to path. An existing file is an ErrConfigExists
// error unless force is set, in which case it is first renamed to a
// timestamped backup whose path is returned.
func WriteStarter(cfg *Config, path string, force bool) (backup string, err error) {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		backup = path + ".bak." + time.Now().Format("20060102-150405")
		if err := os.Rename(path, backup); err != nil {
			return "", fmt.Errorf("back up config: %w", err)
		}
	}
	if err := Save(cfg, path); err != nil {
		return backup, fmt.Errorf("write config: %w", err)
	}
	return backup, nil
}

// ExpandHome replaces a leading ~ or ~/ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if len(path) > 1 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func expandPaths(paths []string) []string {
	result := make([]string, len(paths))
	for i, p := range paths {
		result[i] = ExpandHome(p)
	}
	return result
}
