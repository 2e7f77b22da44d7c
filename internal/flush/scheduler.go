// Package flush runs the background write-back loop. It polls the catalog's
// dirty flag and size on a ticker and persists a snapshot once the threshold
// is crossed, keeping durable I/O off the request path entirely.
package flush

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"songvault/internal/catalog"
	"songvault/internal/persist"
)

// Config controls the scheduler's polling and retry behavior.
type Config struct {
	// Interval between threshold checks.
	Interval time.Duration
	// Threshold is the minimum catalog size before a dirty catalog is
	// flushed.
	Threshold int
	// RetryBase seeds the Fibonacci backoff applied when a persist fails;
	// MaxRetries caps the extra attempts before the scheduler gives up
	// until the next poll.
	RetryBase  time.Duration
	MaxRetries uint64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Interval:   2 * time.Second,
		Threshold:  100,
		RetryBase:  100 * time.Millisecond,
		MaxRetries: 2,
	}
}

// Scheduler owns the flush loop. It is the only caller of Backend.Persist
// after startup and the only thing that clears the catalog's dirty flag.
type Scheduler struct {
	store   *catalog.Store
	backend persist.Backend
	cfg     Config
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a scheduler. Zero config fields fall back to the defaults.
func New(store *catalog.Store, backend persist.Backend, cfg Config, logger *slog.Logger) *Scheduler {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = def.RetryBase
	}

	return &Scheduler{
		store:   store,
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start launches the background loop.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop halts the loop, waits for it to exit, then performs one best-effort
// final flush if unflushed mutations remain — regardless of the size
// threshold. A failed final flush is logged, not propagated: shutdown
// durability is best effort by design.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh

	if s.store.Dirty() {
		s.flush()
	}
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.store.Dirty() && s.store.Len() >= s.cfg.Threshold {
				s.flush()
			}
		case <-s.stopCh:
			return
		}
	}
}

// flush persists a point-in-time snapshot. The dirty flag is cleared before
// the copy is taken, so a mutation landing mid-flush re-raises it and is
// picked up by a later cycle rather than lost.
func (s *Scheduler) flush() {
	s.store.ClearDirty()
	snap := s.store.Snapshot()

	start := time.Now()
	backoff := retry.NewFibonacci(s.cfg.RetryBase)
	err := retry.Do(context.Background(), retry.WithMaxRetries(s.cfg.MaxRetries, backoff),
		func(ctx context.Context) error {
			return retry.RetryableError(s.backend.Persist(snap))
		})
	if err != nil {
		s.logger.Error("flush failed, will retry on next cycle",
			"records", len(snap.Records), "error", err)
		s.store.MarkDirty()
		return
	}

	s.logger.Info("catalog flushed",
		"records", len(snap.Records), "elapsed", time.Since(start))
}
