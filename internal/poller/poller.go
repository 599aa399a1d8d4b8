// Package poller keeps the dashboard's moderation data fresh while the
// server runs.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher is the part of the moderation cache the poller drives.
type Refresher interface {
	DataLoaded() bool
	RefreshReports(ctx context.Context) error
	RefreshUsers(ctx context.Context) error
}

// Pruner drops expired client state. The SQLite state store implements it.
type Pruner interface {
	PruneExpiredCookies(ctx context.Context) (int64, error)
}

// Poller periodically re-fetches reports and users. Ticks are skipped until
// the cache has been loaded once, so an unauthenticated server stays quiet.
type Poller struct {
	interval time.Duration
	cache    Refresher
	pruner   Pruner
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Poller. It returns nil when interval is not positive, which
// disables polling; the nil Poller's methods are no-ops. pruner may be nil.
func New(interval time.Duration, cache Refresher, pruner Pruner, logger *slog.Logger) *Poller {
	if interval <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		interval: interval,
		cache:    cache,
		pruner:   pruner,
		logger:   logger,
	}
}

// Start begins the background loop. Non-blocking.
func (p *Poller) Start() {
	if p == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.tick(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the loop and waits for an in-flight tick to finish.
func (p *Poller) Shutdown() {
	if p == nil {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Poller) tick(ctx context.Context) {
	if p.pruner != nil {
		if n, err := p.pruner.PruneExpiredCookies(ctx); err != nil {
			p.logger.Warn("prune expired cookies failed", "error", err)
		} else if n > 0 {
			p.logger.Debug("pruned expired cookies", "count", n)
		}
	}

	if !p.cache.DataLoaded() {
		return
	}

	// Refresh failures are logged by the cache and leave its data as is.
	reportsErr := p.cache.RefreshReports(ctx)
	usersErr := p.cache.RefreshUsers(ctx)
	if reportsErr == nil && usersErr == nil {
		p.logger.Debug("moderation data refreshed")
	}
}
