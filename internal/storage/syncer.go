package storage

import (
	"context"
	"time"

	"llmgateway/internal/credential"
	"llmgateway/internal/logging"
)

// Syncer periodically flushes the pool's credential snapshots to a
// Backend and restores them at startup.
type Syncer struct {
	pool    *credential.Pool
	backend Backend
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncer builds a Syncer. Restore must be called before the pool
// starts serving if warm state is wanted; Start launches the periodic
// flush.
func NewSyncer(pool *credential.Pool, backend Backend) *Syncer {
	return &Syncer{
		pool:    pool,
		backend: backend,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Restore loads persisted snapshots and applies them onto the pool.
// Missing or empty state is not an error.
func (s *Syncer) Restore(ctx context.Context) error {
	snaps, err := s.backend.LoadSnapshots(ctx)
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		s.pool.ApplySnapshot(snap)
	}
	return nil
}

// Start flushes snapshots every interval until Stop is called. The
// final flush on Stop captures the latest state.
func (s *Syncer) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.flush()
			case <-s.stopCh:
				s.flush()
				return
			}
		}
	}()
}

func (s *Syncer) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.backend.SaveSnapshots(ctx, s.pool.Snapshot()); err != nil {
		logging.Logger().WithError(err).Warn("credential state flush failed")
	}
}

// Stop ends the flush loop after one final flush.
func (s *Syncer) Stop() {
	close(s.stopCh)
	<-s.doneCh
}
