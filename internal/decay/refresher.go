package decay

import (
	"context"
	"sync"
	"time"
)

// DefaultRefreshInterval is the cadence at which a Refresher re-runs its
// task when nothing else triggers it.
const DefaultRefreshInterval = time.Minute

// Refresher periodically runs a recompute task (such as reconciling cached
// daily totals against the intake event log). It is an explicit scheduled
// task with a cancellable handle rather than an ad-hoc timer: Start returns
// only after the loop is running, Kick forces an immediate run, and Stop
// blocks until the loop has fully exited.
type Refresher struct {
	interval time.Duration
	task     func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	kick   chan struct{}
	done   chan struct{}
}

// NewRefresher builds a Refresher running task every interval. A
// non-positive interval falls back to DefaultRefreshInterval. The task
// receives a context that is cancelled when the Refresher stops.
func NewRefresher(interval time.Duration, task func(ctx context.Context)) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{interval: interval, task: task}
}

// Start launches the refresh loop. Calling Start on a running Refresher is
// a no-op. The loop stops when Stop is called or ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.kick = make(chan struct{}, 1)
	r.done = make(chan struct{})
	go r.loop(loopCtx, r.kick, r.done)
}

// Kick requests an immediate run without waiting for the next tick. Kicks
// coalesce: at most one extra run is queued. Kick on a stopped Refresher is
// a no-op.
func (r *Refresher) Kick() {
	r.mu.Lock()
	kick := r.kick
	r.mu.Unlock()
	if kick == nil {
		return
	}
	select {
	case kick <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for it to exit. Safe to call more than
// once.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.kick, r.done = nil, nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Refresher) loop(ctx context.Context, kick <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.task(ctx)
		case <-kick:
			r.task(ctx)
		}
	}
}
