// Package refresh polls the summary fragment on an interval and applies it,
// holding it back while an edit or sale dialog is open.
package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the summary poll period.
const DefaultInterval = 60 * time.Second

// Fetcher returns the latest fragment.
type Fetcher func(ctx context.Context) (string, error)

// Guard reports whether applying a fragment now would disturb the user.
type Guard interface {
	DialogOpen() bool
}

// Refresher applies polled fragments through Apply.
type Refresher struct {
	fetch    Fetcher
	guard    Guard
	apply    func(fragment string)
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	pending *string
}

// New returns a Refresher. A zero interval means DefaultInterval; a nil
// guard never defers.
func New(fetch Fetcher, guard Guard, apply func(string), interval time.Duration, log *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{
		fetch:    fetch,
		guard:    guard,
		apply:    apply,
		interval: interval,
		log:      log.Named("refresh"),
	}
}

// Run polls until ctx is cancelled and returns ctx.Err().
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil && ctx.Err() == nil {
				r.log.Warn("summary refresh failed", zap.Error(err))
			}
		}
	}
}

// Tick fetches once and applies or defers the result. A failed fetch leaves
// the current view and any pending fragment alone.
func (r *Refresher) Tick(ctx context.Context) error {
	frag, err := r.fetch(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.guard != nil && r.guard.DialogOpen() {
		r.pending = &frag
		r.log.Debug("refresh deferred while dialog is open")
		return nil
	}
	r.pending = nil
	r.apply(frag)
	return nil
}

// Flush applies a deferred fragment once no dialog is open. Wire it to the
// dialog close event.
func (r *Refresher) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil || (r.guard != nil && r.guard.DialogOpen()) {
		return
	}
	frag := *r.pending
	r.pending = nil
	r.apply(frag)
}

// Pending reports whether a deferred fragment is waiting.
func (r *Refresher) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}
