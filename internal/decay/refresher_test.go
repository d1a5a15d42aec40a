package decay

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRefresher_KickRunsImmediately(t *testing.T) {
	var runs atomic.Int64
	r := NewRefresher(time.Hour, func(context.Context) { runs.Add(1) })
	r.Start(context.Background())
	defer r.Stop()

	r.Kick()
	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("kick did not trigger a run")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRefresher_TicksOnInterval(t *testing.T) {
	var runs atomic.Int64
	r := NewRefresher(10*time.Millisecond, func(context.Context) { runs.Add(1) })
	r.Start(context.Background())
	defer r.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 ticks, got %d", runs.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRefresher_StopIsIdempotentAndHalts(t *testing.T) {
	var runs atomic.Int64
	r := NewRefresher(5*time.Millisecond, func(context.Context) { runs.Add(1) })
	r.Start(context.Background())

	time.Sleep(20 * time.Millisecond)
	r.Stop()
	r.Stop() // second call must not panic or block

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got != after {
		t.Fatalf("task ran after Stop: %d -> %d", after, got)
	}

	// Kick after Stop is a no-op.
	r.Kick()
	time.Sleep(10 * time.Millisecond)
	if got := runs.Load(); got != after {
		t.Fatalf("kick after Stop ran the task: %d -> %d", after, got)
	}
}

func TestRefresher_ParentContextCancelStopsLoop(t *testing.T) {
	var runs atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRefresher(5*time.Millisecond, func(context.Context) { runs.Add(1) })
	r.Start(ctx)
	defer r.Stop()

	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got != after {
		t.Fatalf("task ran after parent cancel: %d -> %d", after, got)
	}
}
