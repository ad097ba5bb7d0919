package background

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type stubSweeper struct {
	calls atomic.Int32
}

func (s *stubSweeper) Sweep(ctx context.Context) (int64, error) {
	s.calls.Add(1)
	return 1, nil
}

func TestCleanupManager_RunsImmediatelyAndStops(t *testing.T) {
	sweeper := &stubSweeper{}
	cm := NewCleanupManager(sweeper, slog.Default(), time.Hour)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	// Startup sweep fires before the first tick
	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("startup sweep never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cm.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestCleanupManager_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cm := NewCleanupManager(&stubSweeper{}, slog.Default(), time.Hour)

	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup manager did not honor context cancellation")
	}
}
