package config

import "llmgateway/internal/constants"

// Defaults returns a FileConfig pre-populated with the stock defaults.
func Defaults() *FileConfig {
	return &FileConfig{
		Port: 8080,

		MaxAttempts:           constants.DefaultMaxAttempts,
		PerAttemptTimeoutS:    int(constants.DefaultPerAttemptTimeout.Seconds()),
		OverallDeadlineS:      int(constants.DefaultOverallDeadline.Seconds()),
		MaxFailuresBeforeCool: constants.DefaultMaxFailuresBeforeCool,
		CoolingPeriod: CoolingPeriod{
			AuthS:      int(constants.DefaultCoolingAuth.Seconds()),
			QuotaS:     int(constants.DefaultCoolingQuota.Seconds()),
			TransientS: int(constants.DefaultCoolingTransient.Seconds()),
		},

		CacheEnabled: true,
		CacheMaxSize: constants.DefaultCacheMaxSize,
		CacheTTLS:    int(constants.DefaultCacheTTL.Seconds()),

		ModelMapping: ModelMapping{
			Mapping: map[string]string{
				"gpt-3.5-turbo": "gemini-2.5-flash",
				"gpt-4":         "gemini-2.5-pro",
				"gpt-4o":        "gemini-2.5-pro",
				"gpt-4o-mini":   "gemini-2.5-flash",
			},
			DefaultModel: "gemini-2.5-pro",
		},

		StateBackend: "memory",
		RedisPrefix:  "llmgateway",
	}
}

// applyDefaults fills zero-valued fields on cfg with Defaults(), used
// after YAML unmarshal so an empty/partial file still yields a usable
// configuration.
func applyDefaults(cfg *FileConfig) {
	d := Defaults()
	if cfg.Port == 0 {
		cfg.Port = d.Port
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = d.MaxAttempts
	}
	if cfg.PerAttemptTimeoutS == 0 {
		cfg.PerAttemptTimeoutS = d.PerAttemptTimeoutS
	}
	if cfg.OverallDeadlineS == 0 {
		cfg.OverallDeadlineS = d.OverallDeadlineS
	}
	if cfg.MaxFailuresBeforeCool == 0 {
		cfg.MaxFailuresBeforeCool = d.MaxFailuresBeforeCool
	}
	if cfg.CoolingPeriod.AuthS == 0 {
		cfg.CoolingPeriod.AuthS = d.CoolingPeriod.AuthS
	}
	if cfg.CoolingPeriod.QuotaS == 0 {
		cfg.CoolingPeriod.QuotaS = d.CoolingPeriod.QuotaS
	}
	if cfg.CoolingPeriod.TransientS == 0 {
		cfg.CoolingPeriod.TransientS = d.CoolingPeriod.TransientS
	}
	if cfg.CacheMaxSize == 0 {
		cfg.CacheMaxSize = d.CacheMaxSize
	}
	if cfg.CacheTTLS == 0 {
		cfg.CacheTTLS = d.CacheTTLS
	}
	if cfg.ModelMapping.Mapping == nil {
		cfg.ModelMapping = d.ModelMapping
	}
	if cfg.ModelMapping.DefaultModel == "" {
		cfg.ModelMapping.DefaultModel = d.ModelMapping.DefaultModel
	}
	if cfg.StateBackend == "" {
		cfg.StateBackend = d.StateBackend
	}
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = d.RedisPrefix
	}
}
