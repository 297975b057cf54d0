package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "10.0.0.1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different key has its own bucket
	if err := limiter.Wait(ctx, "10.0.0.2"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(1, 2)

	if !limiter.Allow("client") || !limiter.Allow("client") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if limiter.Allow("client") {
		t.Error("expected third immediate request to be rejected")
	}
	if !limiter.Allow("other") {
		t.Error("expected a different key to be allowed")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.1, 1)
	limiter.Allow("client")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "client"); err == nil {
		t.Error("expected wait to fail when the context deadline is shorter than the delay")
	}
}

func TestLimiter_SetKeyRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetKeyRate("trusted", 1000, 10)

	for i := 0; i < 10; i++ {
		if !limiter.Allow("trusted") {
			t.Fatalf("request %d rejected for trusted key", i)
		}
	}
}

func TestLimiter_Prune(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.Allow("a")
	limiter.Allow("b")

	if n := limiter.Prune(time.Hour); n != 0 {
		t.Errorf("expected nothing pruned, got %d", n)
	}

	time.Sleep(10 * time.Millisecond)
	if n := limiter.Prune(time.Millisecond); n != 2 {
		t.Errorf("expected 2 pruned, got %d", n)
	}
	if limiter.Len() != 0 {
		t.Errorf("expected empty limiter, got %d keys", limiter.Len())
	}
}
