package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstThenDeny(t *testing.T) {
	l := New()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if !l.Allow("BTCUSDT", 3, 1) {
			t.Fatalf("burst request %d denied", i)
		}
	}
	if l.Allow("BTCUSDT", 3, 1) {
		t.Fatalf("expected deny after capacity exhausted")
	}
}

func TestLimiterRefill(t *testing.T) {
	l := New()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	if !l.Allow("BTCUSDT", 1, 0.5) {
		t.Fatalf("first request denied")
	}
	if l.Allow("BTCUSDT", 1, 0.5) {
		t.Fatalf("expected deny before refill")
	}

	// 0.5 tokens/s: after 2s one token is back.
	now = now.Add(2 * time.Second)
	if !l.Allow("BTCUSDT", 1, 0.5) {
		t.Fatalf("expected allow after refill")
	}
}

func TestLimiterKeysIndependent(t *testing.T) {
	l := New()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	if !l.Allow("BTCUSDT", 1, 1) {
		t.Fatalf("first key denied")
	}
	if !l.Allow("ETHUSDT", 1, 1) {
		t.Fatalf("second key should have its own bucket")
	}
}

func TestLimiterReset(t *testing.T) {
	l := New()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	if !l.Allow("BTCUSDT", 1, 0.001) {
		t.Fatalf("first request denied")
	}
	if l.Allow("BTCUSDT", 1, 0.001) {
		t.Fatalf("expected deny")
	}
	l.Reset("BTCUSDT")
	if !l.Allow("BTCUSDT", 1, 0.001) {
		t.Fatalf("expected allow after reset")
	}
}
