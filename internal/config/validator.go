package config

import "fmt"

// Validate checks the invariants the rest of the gateway assumes hold.
// It runs once at startup and again on every hot-reload; a failed
// validation keeps the previous config in place.
func Validate(cfg *FileConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("config: max_attempts must be >= 1, got %d", cfg.MaxAttempts)
	}
	if cfg.MaxFailuresBeforeCool < 1 {
		return fmt.Errorf("config: max_failures_before_cool must be >= 1, got %d", cfg.MaxFailuresBeforeCool)
	}
	if cfg.CacheMaxSize < 1 {
		return fmt.Errorf("config: cache_max_size must be >= 1, got %d", cfg.CacheMaxSize)
	}
	if len(cfg.Credentials) == 0 && cfg.CredentialsDir == "" {
		return fmt.Errorf("config: no credentials configured (set credentials or credentials_dir)")
	}
	switch cfg.StateBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown state_backend %q", cfg.StateBackend)
	}
	if cfg.StateBackend == "redis" && cfg.RedisAddr == "" {
		return fmt.Errorf("config: state_backend=redis requires redis_addr")
	}
	return nil
}
