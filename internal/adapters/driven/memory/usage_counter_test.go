package memory

import (
	"context"
	"sync"
	"testing"
)

func TestUsageCounter_IncrementAndUsed(t *testing.T) {
	counter := NewUsageCounter()
	ctx := context.Background()

	if used, _ := counter.Used(ctx, "alice", "2026-08-27"); used != 0 {
		t.Errorf("expected 0 before any use, got %d", used)
	}

	for i := 1; i <= 3; i++ {
		count, err := counter.Increment(ctx, "alice", "2026-08-27")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != i {
			t.Errorf("expected count %d, got %d", i, count)
		}
	}

	if used, _ := counter.Used(ctx, "alice", "2026-08-28"); used != 0 {
		t.Errorf("expected independent day counter, got %d", used)
	}
}

func TestUsageCounter_ConcurrentIncrements(t *testing.T) {
	counter := NewUsageCounter()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter.Increment(ctx, "alice", "2026-08-27")
		}()
	}
	wg.Wait()

	used, err := counter.Used(ctx, "alice", "2026-08-27")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != 50 {
		t.Errorf("expected 50 after concurrent increments, got %d", used)
	}
}
