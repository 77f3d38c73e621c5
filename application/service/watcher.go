package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/talentwatch/talentwatch/internal/config"
)

// Watcher runs reconciliation on a timer so employment state keeps tracking
// new scrape batches without manual runs. Each tick also refreshes the
// published report tables when a reporter is attached.
type Watcher struct {
	reconciler *Reconciler
	reporter   *Reporter
	logger     *slog.Logger
	interval   time.Duration
	enabled    bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewWatcher creates a new Watcher from config and dependencies. The
// reporter may be nil, in which case ticks only reconcile.
func NewWatcher(
	cfg config.WatchConfig,
	reconciler *Reconciler,
	reporter *Reporter,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		reconciler: reconciler,
		reporter:   reporter,
		logger:     logger,
		interval:   cfg.Interval(),
		enabled:    cfg.Enabled(),
	}
}

// Start begins watching in a background goroutine.
// If disabled, this is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	if !w.enabled {
		w.logger.Info("watcher disabled")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	w.logger.Info("watcher started", slog.Duration("interval", w.interval))
}

// Stop cancels the background goroutine and waits for it to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
	w.logger.Info("watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	// Reconcile immediately on startup. The first tick publishes even when
	// no batch folded, so the report tables reflect current state as soon
	// as watching begins.
	w.tick(ctx, true)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx, false)
		}
	}
}

func (w *Watcher) tick(ctx context.Context, publish bool) {
	result, err := w.reconciler.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrRunInProgress) {
			w.logger.Debug("watcher tick skipped, run already in progress")
			return
		}
		// Partial results are still durable, so report whatever folded.
		w.logger.Warn("watcher reconcile stopped early",
			slog.Int("batches_folded", result.BatchesFolded),
			slog.Int("batches_skipped", result.BatchesSkipped),
			slog.String("error", err.Error()),
		)
	}

	w.logger.Debug("watcher tick reconciled",
		slog.Int("batches_folded", result.BatchesFolded),
		slog.Int("records_folded", result.RecordsFolded),
	)

	if w.reporter == nil || (!publish && result.BatchesFolded == 0) {
		return
	}
	if err := w.reporter.PublishAll(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("watcher failed to publish reports",
			slog.String("error", err.Error()),
		)
	}
}
