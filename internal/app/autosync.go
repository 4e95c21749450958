package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// Scheduler defaults.
const (
	DefaultSyncInterval    = 30 * time.Second
	DefaultSyncPassTimeout = 2 * time.Minute
)

// SyncRunner runs one sync pass.
type SyncRunner interface {
	Sync(ctx context.Context, trigger string) (*domain.SyncReport, error)
}

// AutoSync runs a sync pass on a fixed interval while enabled. At most one
// ticker loop exists at any time regardless of how often it is toggled.
type AutoSync struct {
	runner      SyncRunner
	interval    time.Duration
	passTimeout time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	loops  sync.WaitGroup
}

// AutoSyncConfig configures the scheduler.
type AutoSyncConfig struct {
	Runner      SyncRunner
	Interval    time.Duration
	PassTimeout time.Duration
	Logger      *slog.Logger
}

// NewAutoSync creates a disabled scheduler. Panics if Runner is nil.
func NewAutoSync(cfg AutoSyncConfig) *AutoSync {
	if cfg.Runner == nil {
		panic("AutoSync: Runner is required")
	}

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSyncInterval
	}

	if cfg.PassTimeout <= 0 {
		cfg.PassTimeout = DefaultSyncPassTimeout
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &AutoSync{
		runner:      cfg.Runner,
		interval:    cfg.Interval,
		passTimeout: cfg.PassTimeout,
		logger:      cfg.Logger.With(slog.String("component", "app.AutoSync")),
	}
}

// Enable starts the ticker loop, replacing any loop already running.
func (a *AutoSync) Enable(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()

	stopCh := make(chan struct{})
	a.stopCh = stopCh

	a.loops.Go(func() { a.loop(context.WithoutCancel(ctx), stopCh) })

	a.logger.InfoContext(ctx, "auto-sync enabled", slog.Duration("interval", a.interval))
}

// Disable stops the ticker loop. A pass already in flight runs to completion.
func (a *AutoSync) Disable(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopLocked() {
		a.logger.InfoContext(ctx, "auto-sync disabled")
	}
}

// Enabled reports whether the ticker loop is running.
func (a *AutoSync) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.stopCh != nil
}

// Stop disables the scheduler and waits for the loop, including any pass in
// flight, to finish or for ctx to expire.
func (a *AutoSync) Stop(ctx context.Context) error {
	a.Disable(ctx)

	done := make(chan struct{})
	go func() {
		a.loops.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AutoSync) stopLocked() bool {
	if a.stopCh == nil {
		return false
	}

	close(a.stopCh)
	a.stopCh = nil

	return true
}

func (a *AutoSync) loop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *AutoSync) tick(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, a.passTimeout)
	defer cancel()

	report, err := a.runner.Sync(passCtx, TriggerTimer)

	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		a.logger.DebugContext(ctx, "skipping tick; a pass is already running")
	case err != nil:
		a.logger.ErrorContext(ctx, "scheduled sync failed", slog.Any("error", err))
	default:
		a.logger.DebugContext(ctx, "scheduled sync finished",
			slog.Int("conflicts", len(report.Conflicts)),
			slog.Int("added", len(report.Added)),
		)
	}
}
