package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ConversionLimiter Tests
// ----------------------------------------------------------------------------

func TestConversionLimiter_Slots(t *testing.T) {
	limiter := NewConversionLimiter(2, time.Second)
	ctx := context.Background()

	steps := []struct {
		name          string
		do            func()
		wantActive    int
		wantAvailable int
	}{
		{name: "initial", do: func() {}, wantActive: 0, wantAvailable: 2},
		{name: "acquire", do: func() { mustAcquire(t, limiter, ctx) }, wantActive: 1, wantAvailable: 1},
		{name: "acquire again", do: func() { mustAcquire(t, limiter, ctx) }, wantActive: 2, wantAvailable: 0},
		{name: "release", do: limiter.Release, wantActive: 1, wantAvailable: 1},
		{name: "release again", do: limiter.Release, wantActive: 0, wantAvailable: 2},
	}

	for _, s := range steps {
		s.do()
		status := limiter.Status()
		if status.Active != s.wantActive || limiter.ActiveCount() != s.wantActive {
			t.Errorf("%s: Active = %d, want %d", s.name, status.Active, s.wantActive)
		}
		if status.Available != s.wantAvailable || limiter.Available() != s.wantAvailable {
			t.Errorf("%s: Available = %d, want %d", s.name, status.Available, s.wantAvailable)
		}
		if status.MaxConcurrent != 2 {
			t.Errorf("%s: MaxConcurrent = %d, want 2", s.name, status.MaxConcurrent)
		}
	}
}

func mustAcquire(t *testing.T, l *ConversionLimiter, ctx context.Context) {
	t.Helper()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
}

func TestConversionLimiter_RejectsWhenFull(t *testing.T) {
	limiter := NewConversionLimiter(1, 50*time.Millisecond)
	mustAcquire(t, limiter, context.Background())
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(context.Background())
	if !errors.Is(err, ErrTooManyConversions) {
		t.Errorf("expected ErrTooManyConversions, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("gave up too early: %v", elapsed)
	}

	if limiter.TryAcquire() {
		t.Error("TryAcquire should fail when full")
		limiter.Release()
	}
}

func TestConversionLimiter_ContextCancellation(t *testing.T) {
	limiter := NewConversionLimiter(1, 5*time.Second)
	mustAcquire(t, limiter, context.Background())
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}
}

func TestConversionLimiter_BoundsConcurrency(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewConversionLimiter(maxConcurrent, time.Second)

	var (
		wg      sync.WaitGroup
		running atomic.Int32
		peak    atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > maxConcurrent {
		t.Errorf("peak concurrency %d exceeds %d", got, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestConversionLimiter_WaitForDrain(t *testing.T) {
	limiter := NewConversionLimiter(2, time.Second)
	mustAcquire(t, limiter, context.Background())

	done := make(chan error, 1)
	go func() {
		done <- limiter.WaitForDrain(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned with an active conversion")
	case <-time.After(50 * time.Millisecond):
	}

	limiter.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after release")
	}

	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Errorf("WaitForDrain on idle limiter = %v", err)
	}
}

func TestConversionLimiter_WaitForDrainCancelled(t *testing.T) {
	limiter := NewConversionLimiter(1, time.Second)
	mustAcquire(t, limiter, context.Background())
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestConversionLimiter_Defaults(t *testing.T) {
	limiter := NewConversionLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentConversions {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentConversions)
	}
}

func TestConversionLimiter_ReleaseWithoutAcquire(t *testing.T) {
	limiter := NewConversionLimiter(1, time.Second)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed on an idle limiter")
	}
	limiter.Release()

	defer func() {
		if recover() == nil {
			t.Error("second Release should panic")
		}
		if got := limiter.Available(); got != 1 {
			t.Errorf("Available = %d, want 1", got)
		}
	}()
	limiter.Release()
}
