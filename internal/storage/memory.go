package storage

import (
	"context"
	"sync"

	"llmgateway/internal/credential"
)

// MemoryBackend keeps snapshots in process memory. It satisfies the
// Backend contract for deployments that don't want cross-restart state.
type MemoryBackend struct {
	mu    sync.Mutex
	snaps []credential.Snapshot
}

// NewMemoryBackend builds an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) SaveSnapshots(_ context.Context, snaps []credential.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append([]credential.Snapshot(nil), snaps...)
	return nil
}

func (m *MemoryBackend) LoadSnapshots(context.Context) ([]credential.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]credential.Snapshot(nil), m.snaps...), nil
}

func (m *MemoryBackend) Close() error { return nil }
