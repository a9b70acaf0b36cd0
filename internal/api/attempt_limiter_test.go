package api

import (
	"testing"
	"time"
)

func TestAttemptLimiterWindowAndClear(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(1, time.Hour)
	key := "127.0.0.1"
	now := time.Now().UTC()

	limiter.recordFailure(key, now.Add(-2*time.Hour))
	if limiter.blocked(key, now) {
		t.Fatal("expected old failure to fall out of the window")
	}

	limiter.recordFailure(key, now.Add(-30*time.Minute))
	if !limiter.blocked(key, now) {
		t.Fatal("expected one recent failure to hit limit 1")
	}

	limiter.clear(key)
	if limiter.blocked(key, now) {
		t.Fatal("expected no failures after clear")
	}
}

func TestAttemptLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(2, time.Minute)
	now := time.Now().UTC()

	limiter.recordFailure("10.0.0.1", now)
	limiter.recordFailure("10.0.0.1", now)
	if !limiter.blocked("10.0.0.1", now) {
		t.Fatal("expected first client to be blocked")
	}
	if limiter.blocked("10.0.0.2", now) {
		t.Fatal("expected second client to be allowed")
	}
}
