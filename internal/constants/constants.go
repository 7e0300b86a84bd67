// Package constants collects tunables that are not meant to be
// per-deployment configuration: transport pool sizing, default retry
// shape, and generation clamps that mirror the upstream's own limits.
package constants

import "time"

// Transport pool sizing for the outbound HTTP client used by UpstreamClient.
const (
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 20
	MaxConnsPerHost     = 0 // unlimited
	IdleConnTimeout     = 90 * time.Second

	DialTimeout           = 10 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	ResponseHeaderTimeout = 60 * time.Second
	ExpectContinueTimeout = 1 * time.Second
)

// Default attempt/retry shape, overridable via config.FileConfig.
const (
	DefaultMaxAttempts           = 3
	DefaultPerAttemptTimeout     = 30 * time.Second
	DefaultOverallDeadline       = 60 * time.Second
	DefaultMaxFailuresBeforeCool = 3
)

// Default cooling periods by failure kind.
const (
	DefaultCoolingAuth      = 1 * time.Hour
	DefaultCoolingQuota     = 5 * time.Minute
	DefaultCoolingTransient = 30 * time.Second
)

// Default response cache shape.
const (
	DefaultCacheMaxSize = 1024
	DefaultCacheTTL     = 5 * time.Minute
)

// Generation parameter clamps, mirrored from the upstream's documented limits.
const (
	DefaultTopK       = 64
	MaxTopK           = 64
	MaxOutputTokens   = 65535
	StreamFlushChunks = 4 // bounded internal buffer depth for SSE smoothing
)
