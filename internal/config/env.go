package config

import (
	"os"
	"strconv"
	"strings"
)

// overlayEnv layers environment variables on top of whatever YAML
// produced (file first, env wins). Only scalar/simple-list fields are
// overlaid; model_mapping stays file-only since it's a structured table.
func overlayEnv(cfg *FileConfig) {
	if v := os.Getenv("GATEWAY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("GATEWAY_DEBUG"); v != "" {
		cfg.Debug = parseBool(v)
	}
	if v := os.Getenv("GATEWAY_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("GATEWAY_CLIENT_KEYS"); v != "" {
		cfg.ClientKeys = splitCSV(v)
	}
	if v := os.Getenv("GATEWAY_ADMIN_KEYS"); v != "" {
		cfg.AdminKeys = splitCSV(v)
	}
	if v := os.Getenv("GATEWAY_CREDENTIALS"); v != "" {
		cfg.Credentials = splitCSV(v)
	}
	if v := os.Getenv("GATEWAY_CREDENTIALS_DIR"); v != "" {
		cfg.CredentialsDir = v
	}
	if v := os.Getenv("GATEWAY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("GATEWAY_PER_ATTEMPT_TIMEOUT_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PerAttemptTimeoutS = n
		}
	}
	if v := os.Getenv("GATEWAY_OVERALL_DEADLINE_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.OverallDeadlineS = n
		}
	}
	if v := os.Getenv("GATEWAY_UPSTREAM_BASE_URL"); v != "" {
		cfg.UpstreamBaseURL = v
	}
	if v := os.Getenv("GATEWAY_OUTBOUND_PROXY_URL"); v != "" {
		cfg.OutboundProxyURL = v
	}
	if v := os.Getenv("GATEWAY_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("GATEWAY_STATE_BACKEND"); v != "" {
		cfg.StateBackend = v
	}
	if v := os.Getenv("GATEWAY_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("GATEWAY_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
