// Package ratelimit implements a fixed-window request counter per client
// identifier.
//
// Windows do not slide: a client can get up to 2x the limit through in a
// short span straddling two windows. That is acceptable for abuse deterrence;
// callers that need strict quotas should use a sliding window or token bucket.
package ratelimit

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultLimit         = 10
	DefaultWindow        = 60 * time.Second
	DefaultSweepInterval = 5 * time.Minute
)

// Store holds the identifier->window mapping. Hit must apply one request
// atomically per identifier: start a new window when none is active,
// otherwise increment the count unless it already reached limit.
type Store interface {
	Hit(ctx context.Context, identifier string, limit int, window time.Duration, now time.Time) (Window, error)
}

// Sweeper is implemented by stores that need explicit garbage collection of
// elapsed windows.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Window is the state of an identifier after a Hit.
type Window struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds is RetryAfter in whole seconds, rounded up.
func (r Result) RetryAfterSeconds() int64 {
	return int64(r.RetryAfter / time.Second)
}

type Option func(*Governor)

func WithClock(now func() time.Time) Option {
	return func(g *Governor) { g.now = now }
}

// WithDefaults sets the limit and window used by Allow.
func WithDefaults(limit int, window time.Duration) Option {
	return func(g *Governor) {
		if limit > 0 {
			g.limit = limit
		}
		if window > 0 {
			g.window = window
		}
	}
}

type Governor struct {
	store  Store
	now    func() time.Time
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewGovernor(store Store, logger *zap.Logger, opts ...Option) *Governor {
	g := &Governor{
		store:  store,
		now:    time.Now,
		limit:  DefaultLimit,
		window: DefaultWindow,
		logger: logger.Named("RateGovernor"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow evaluates identifier against the governor's configured limit and window.
func (g *Governor) Allow(ctx context.Context, identifier string) Result {
	return g.Evaluate(ctx, identifier, g.limit, g.window)
}

// Evaluate counts one request for identifier. It never fails: when the store
// is unreachable the request is let through and the error is logged.
func (g *Governor) Evaluate(ctx context.Context, identifier string, limit int, window time.Duration) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}

	now := g.now()
	w, err := g.store.Hit(ctx, identifier, limit, window, now)
	if err != nil {
		g.logger.Error("Rate limit store failed, allowing request",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - 1,
			ResetAt:   now.Add(window),
		}
	}

	if !w.Allowed {
		return Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    w.ResetAt,
			RetryAfter: ceilSeconds(w.ResetAt.Sub(now)),
		}
	}

	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: max(limit-w.Count, 0),
		ResetAt:   w.ResetAt,
	}
}

// RunSweeper periodically drops elapsed windows until ctx is done. It returns
// immediately for stores that expire entries on their own.
func (g *Governor) RunSweeper(ctx context.Context, interval time.Duration) error {
	sweeper, ok := g.store.(Sweeper)
	if !ok {
		g.logger.Debug("Rate limit store expires entries itself, sweeper not started")
		return nil
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	g.logger.Info("Rate limit sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("Rate limit sweeper stopped")
			return nil
		case <-ticker.C:
			if removed := sweeper.Sweep(g.now()); removed > 0 {
				g.logger.Debug("Swept elapsed rate limit windows", zap.Int("removed", removed))
			}
		}
	}
}

func ceilSeconds(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(d.Seconds())) * time.Second
}
