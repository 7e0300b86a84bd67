// Package config implements the gateway's FileConfig: a YAML-backed
// configuration struct with environment-variable overlay and optional
// fsnotify-driven hot-reload.
package config

// CoolingPeriod holds the cooling durations (in seconds) per failure
// kind.
type CoolingPeriod struct {
	AuthS      int `yaml:"auth_s" json:"auth_s"`
	QuotaS     int `yaml:"quota_s" json:"quota_s"`
	TransientS int `yaml:"transient_s" json:"transient_s"`
}

// ModelMapping is the fixed OpenAI-name -> upstream-name table, plus
// the default upstream model used when a request names no model.
// Names absent from the table pass through unchanged.
type ModelMapping struct {
	Mapping      map[string]string `yaml:"mapping" json:"mapping"`
	DefaultModel string            `yaml:"default_model" json:"default_model"`
}

// FileConfig is the full configuration surface for the gateway, loaded
// from YAML and then overlaid with environment variables (env wins).
type FileConfig struct {
	// Server settings
	Port    int    `yaml:"port" json:"port"`
	Debug   bool   `yaml:"debug" json:"debug"`
	LogFile string `yaml:"log_file" json:"log_file"`

	// Accepted bearer sets for the client and admin surfaces.
	ClientKeys []string `yaml:"client_keys" json:"client_keys"`
	AdminKeys  []string `yaml:"admin_keys" json:"admin_keys"`

	// Upstream credentials: inline secrets and/or a directory of
	// one-secret-per-file entries.
	Credentials    []string `yaml:"credentials" json:"credentials"`
	CredentialsDir string   `yaml:"credentials_dir" json:"credentials_dir"`

	// Attempt-loop shape.
	MaxAttempts           int           `yaml:"max_attempts" json:"max_attempts"`
	PerAttemptTimeoutS    int           `yaml:"per_attempt_timeout_s" json:"per_attempt_timeout_s"`
	OverallDeadlineS      int           `yaml:"overall_deadline_s" json:"overall_deadline_s"`
	MaxFailuresBeforeCool int           `yaml:"max_failures_before_cool" json:"max_failures_before_cool"`
	CoolingPeriod         CoolingPeriod `yaml:"cooling_period" json:"cooling_period"`

	// Response cache shape.
	CacheEnabled bool `yaml:"cache_enabled" json:"cache_enabled"`
	CacheMaxSize int  `yaml:"cache_max_size" json:"cache_max_size"`
	CacheTTLS    int  `yaml:"cache_ttl_s" json:"cache_ttl_s"`

	// Upstream settings.
	UpstreamBaseURL  string `yaml:"upstream_base_url" json:"upstream_base_url"`
	OutboundProxyURL string `yaml:"outbound_proxy_url" json:"outbound_proxy_url"`

	// Model mapping table.
	ModelMapping ModelMapping `yaml:"model_mapping" json:"model_mapping"`

	// Optional persistence backend for credential cooling-state
	// snapshots. The in-memory path is always correct standalone; redis
	// only adds warm restarts.
	StateBackend  string `yaml:"state_backend" json:"state_backend"` // "memory" | "redis"
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix"`
}
