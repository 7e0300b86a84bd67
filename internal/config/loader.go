package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a FileConfig from a YAML file at path, applies the
// environment-variable overlay, fills defaults for anything still unset,
// and validates the result. An empty path yields a defaults-only config
// with the environment overlay still applied, so the gateway can run
// purely off environment variables in container deployments.
func Load(path string) (*FileConfig, error) {
	// applyDefaults cannot tell an unset bool from false, so the
	// cache_enabled default is seeded before the file and env are read.
	cfg := &FileConfig{CacheEnabled: Defaults().CacheEnabled}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	overlayEnv(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Reload re-reads path and returns a fresh FileConfig, used by the
// fsnotify-driven hot-reload path in watcher.go. It builds a brand-new
// struct rather than mutating in place so readers holding the old
// pointer are never raced.
func Reload(path string) (*FileConfig, error) {
	return Load(path)
}
