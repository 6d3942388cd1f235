package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParallelRunsEveryInput(t *testing.T) {
	var sum atomic.Int64
	err := Parallel(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, n int) error {
		sum.Add(int64(n))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Load() != 15 {
		t.Errorf("expected 15, got %d", sum.Load())
	}
}

func TestParallelRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	err := Parallel(context.Background(), make([]struct{}, 8), 3, func(context.Context, struct{}) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak.Load() > 3 {
		t.Errorf("expected at most 3 concurrent calls, saw %d", peak.Load())
	}
}

func TestParallelJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	var calls atomic.Int32

	err := Parallel(context.Background(), []string{"a", "b", "c"}, 1, func(_ context.Context, s string) error {
		calls.Add(1)
		switch s {
		case "a":
			return errA
		case "c":
			return errC
		}
		return nil
	})
	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Errorf("expected both errors, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("a failure must not stop the others, got %d calls", calls.Load())
	}
}

func TestParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := Parallel(ctx, []int{1, 2, 3}, 2, func(context.Context, int) error {
		calls.Add(1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no calls, got %d", calls.Load())
	}
}
