package auth

import (
	"testing"
	"time"
)

func newTestRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
}

func TestRateLimiter_AllowsUntilThreshold(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		rl.RecordFailure("10.0.0.1", "ana@escola.br")
		if allowed, _ := rl.Allow("10.0.0.1", "ana@escola.br"); !allowed {
			t.Fatalf("attempt %d should still be allowed", i+1)
		}
	}

	locked, retryAfter := rl.RecordFailure("10.0.0.1", "ana@escola.br")
	if !locked {
		t.Error("third failure should trigger a lockout")
	}
	if retryAfter <= 0 {
		t.Errorf("retryAfter = %v, want positive", retryAfter)
	}

	if allowed, _ := rl.Allow("10.0.0.1", "ana@escola.br"); allowed {
		t.Error("locked key must not be allowed")
	}
}

func TestRateLimiter_KeysByIPAndEmail(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("10.0.0.1", "ana@escola.br")
	}

	if allowed, _ := rl.Allow("10.0.0.2", "ana@escola.br"); !allowed {
		t.Error("different IP must not share the lockout")
	}
	if allowed, _ := rl.Allow("10.0.0.1", "outro@escola.br"); !allowed {
		t.Error("different email must not share the lockout")
	}
}

func TestRateLimiter_SuccessClearsRecord(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	rl.RecordFailure("10.0.0.1", "ana@escola.br")
	rl.RecordFailure("10.0.0.1", "ana@escola.br")
	rl.RecordSuccess("10.0.0.1", "ana@escola.br")

	// Counter restarts from zero after a successful login
	locked, _ := rl.RecordFailure("10.0.0.1", "ana@escola.br")
	if locked {
		t.Error("single failure after success must not lock")
	}
}
