package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllow_WithinBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	for i := 0; i < 3; i++ {
		if !krl.Allow("client") {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}

	if krl.Allow("client") {
		t.Fatal("request beyond burst should be denied")
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	if !krl.Allow("a") {
		t.Fatal("first request for key a should be allowed")
	}
	if krl.Allow("a") {
		t.Fatal("second request for key a should be denied")
	}

	// A different key has its own bucket.
	if !krl.Allow("b") {
		t.Fatal("first request for key b should be allowed")
	}
}

func TestWait_Paces(t *testing.T) {
	krl := New(50, 1)
	defer krl.Stop()

	ctx := context.Background()
	start := time.Now()

	// First token is immediate, the second waits ~20ms.
	for i := 0; i < 2; i++ {
		if err := krl.Wait(ctx, KeyCatalog); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("expected pacing delay, got %v", elapsed)
	}
}

func TestWait_ContextCanceled(t *testing.T) {
	krl := New(0.001, 1)
	defer krl.Stop()

	ctx, cancel := context.WithCancel(context.Background())

	// Drain the only token, then cancel while the next wait is pending.
	if err := krl.Wait(ctx, KeyProvider); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- krl.Wait(ctx, KeyProvider)
	}()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("wait did not return after context cancellation")
	}
}

func TestConfigure_OverridesDefault(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	krl.Configure(KeyBroker, 100, 5)

	for i := 0; i < 5; i++ {
		if !krl.Allow(KeyBroker) {
			t.Fatalf("request %d should be allowed with configured burst", i)
		}
	}
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
