// Package storage persists credential runtime state (cooling windows,
// counters) across restarts behind a pluggable Backend. The memory
// backend makes persistence a no-op; the redis backend gives a restarted
// gateway warm cooling state so a freshly booted process doesn't
// hammer keys the previous one already saw fail.
package storage

import (
	"context"

	"llmgateway/internal/credential"
)

// Backend stores and retrieves credential state snapshots. Secrets
// never pass through a Backend; snapshots carry only the loggable id.
type Backend interface {
	SaveSnapshots(ctx context.Context, snaps []credential.Snapshot) error
	LoadSnapshots(ctx context.Context) ([]credential.Snapshot, error)
	Close() error
}
