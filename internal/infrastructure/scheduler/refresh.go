package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Warmup repopulates one hot cache entry. Implementations are the normal
// cached accessors, so calling them populates the cache as a side effect.
type Warmup struct {
	Name string
	Run  func(ctx context.Context) error
}

// Clearer is the cache surface the refresher needs.
type Clearer interface {
	ClearAll()
}

// Refresher clears the configuration caches on a daily schedule and then
// warms up a fixed set of hot entries. Warm-ups are dispatched fire-and-forget:
// the run is complete once dispatch occurs, and each warm-up fails
// independently.
type Refresher struct {
	cache    Clearer
	warmups  []Warmup
	at       TimeOfDay
	cooldown time.Duration
	logger   *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// TimeOfDay is a wall-clock schedule point.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewRefresher creates a refresher that runs daily at the given wall-clock
// time, pausing for cooldown between the mass clear and the warm-up dispatch.
func NewRefresher(cache Clearer, warmups []Warmup, at TimeOfDay, cooldown time.Duration, logger *slog.Logger) *Refresher {
	return &Refresher{
		cache:    cache,
		warmups:  warmups,
		at:       at,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Start runs the daily loop until ctx is cancelled. In-flight warm-ups are
// abandoned on shutdown.
func (r *Refresher) Start(ctx context.Context) {
	for {
		next := r.nextRun()
		r.logger.InfoContext(ctx, "config refresh scheduled", "next_run", next)

		timer := time.NewTimer(next.Sub(r.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		r.RunOnce(ctx)
	}
}

// RunOnce performs one refresh cycle: clear everything, cool down, dispatch
// warm-ups. Warm-up errors are logged and contained; they never reach the
// request path.
func (r *Refresher) RunOnce(ctx context.Context) {
	r.logger.InfoContext(ctx, "clearing configuration caches")
	r.cache.ClearAll()

	// Cooldown avoids a reload storm against the configuration source
	// right after mass eviction.
	r.sleep(ctx, r.cooldown)
	if ctx.Err() != nil {
		return
	}

	for _, w := range r.warmups {
		go func(w Warmup) {
			if err := w.Run(ctx); err != nil {
				r.logger.ErrorContext(ctx, "cache warm-up failed",
					"entry", w.Name,
					"error", err)
				return
			}
			r.logger.InfoContext(ctx, "cache warm-up completed", "entry", w.Name)
		}(w)
	}
}

// nextRun returns the next occurrence of the configured wall-clock time.
func (r *Refresher) nextRun() time.Time {
	now := r.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), r.at.Hour, r.at.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
