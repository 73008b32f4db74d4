package middleware

import (
	"testing"
	"time"
)

func TestIPLimiterAllowWithinLimit(t *testing.T) {
	l := &ipLimiter{buckets: make(map[string]*ipBucket), limit: 3, window: time.Minute}
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1", now) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.allow("10.0.0.1", now) {
		t.Error("request past the limit should be rejected")
	}
	if !l.allow("10.0.0.2", now) {
		t.Error("a different IP must not share the bucket")
	}
}

func TestIPLimiterWindowResets(t *testing.T) {
	l := &ipLimiter{buckets: make(map[string]*ipBucket), limit: 1, window: time.Minute}
	now := time.Now()

	l.allow("10.0.0.1", now)
	if l.allow("10.0.0.1", now) {
		t.Fatal("second request in the window should be rejected")
	}
	if !l.allow("10.0.0.1", now.Add(2*time.Minute)) {
		t.Error("a fresh window should admit requests again")
	}
}

func TestIPLimiterSweep(t *testing.T) {
	l := &ipLimiter{buckets: make(map[string]*ipBucket), limit: 1, window: time.Minute}
	now := time.Now()

	l.allow("10.0.0.1", now)
	l.allow("10.0.0.2", now.Add(3*time.Minute))
	l.sweep(now.Add(3 * time.Minute))

	if _, ok := l.buckets["10.0.0.1"]; ok {
		t.Error("idle bucket should be swept")
	}
	if _, ok := l.buckets["10.0.0.2"]; !ok {
		t.Error("active bucket should survive the sweep")
	}
}
