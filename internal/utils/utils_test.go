package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeTimer struct {
	requested time.Duration
	stopped   int
	fire      bool
}

func (f *fakeTimer) install(t *testing.T) {
	original := startTimer
	t.Cleanup(func() { startTimer = original })

	startTimer = func(d time.Duration) (<-chan time.Time, func() bool) {
		f.requested = d
		ch := make(chan time.Time, 1)
		if f.fire {
			ch <- time.Now()
		}
		return ch, func() bool { f.stopped++; return true }
	}
}

func TestWaitFor(t *testing.T) {
	timer := &fakeTimer{fire: true}
	timer.install(t)

	if err := WaitFor(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timer.requested != 2*time.Second {
		t.Fatalf("expected a 2s timer, got %s", timer.requested)
	}
	if timer.stopped != 1 {
		t.Fatalf("expected the timer to be stopped once, got %d", timer.stopped)
	}

	timer.requested = 0
	if err := WaitFor(context.Background(), 0); err != nil || timer.requested != 0 {
		t.Fatalf("expected no timer for a zero duration, got %v after %s", err, timer.requested)
	}
}

func TestWaitForCancelled(t *testing.T) {
	timer := &fakeTimer{}
	timer.install(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if timer.stopped != 1 {
		t.Fatalf("expected the pending timer to be stopped, got %d stops", timer.stopped)
	}

	if err := WaitFor(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected a zero wait to report the cancelled context, got %v", err)
	}
}

func TestWaitForRealTimer(t *testing.T) {
	started := time.Now()
	if err := WaitFor(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(started); elapsed < 10*time.Millisecond {
		t.Fatalf("returned after %s, before the timer fired", elapsed)
	}
}
