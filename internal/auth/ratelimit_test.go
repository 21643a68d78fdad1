package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(maxAttempts int) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		MaxAttempts:     maxAttempts,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := rl.Allow("1.2.3.4", "alice")
		assert.True(t, allowed)
		rl.RecordFailure("1.2.3.4", "alice")
	}

	allowed, _ := rl.Allow("1.2.3.4", "alice")
	assert.True(t, allowed)
}

func TestRateLimiter_LocksAfterMaxFailures(t *testing.T) {
	rl := newTestLimiter(3)
	defer rl.Stop()

	var locked bool
	var retryAfter time.Duration
	for i := 0; i < 3; i++ {
		locked, retryAfter = rl.RecordFailure("1.2.3.4", "alice")
	}

	assert.True(t, locked)
	assert.Greater(t, retryAfter, time.Duration(0))

	allowed, retry := rl.Allow("1.2.3.4", "alice")
	assert.False(t, allowed)
	assert.Greater(t, retry, time.Duration(0))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newTestLimiter(2)
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "alice")
	rl.RecordFailure("1.2.3.4", "alice")

	allowed, _ := rl.Allow("1.2.3.4", "alice")
	assert.False(t, allowed)

	// Different username, same IP
	allowed, _ = rl.Allow("1.2.3.4", "bob")
	assert.True(t, allowed)

	// Same username, different IP
	allowed, _ = rl.Allow("5.6.7.8", "alice")
	assert.True(t, allowed)
}

func TestRateLimiter_SuccessClearsFailures(t *testing.T) {
	rl := newTestLimiter(3)
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "alice")
	rl.RecordFailure("1.2.3.4", "alice")
	rl.RecordSuccess("1.2.3.4", "alice")

	// Counter restarted from zero
	locked, _ := rl.RecordFailure("1.2.3.4", "alice")
	assert.False(t, locked)

	allowed, _ := rl.Allow("1.2.3.4", "alice")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowExpiryResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  10 * time.Millisecond,
		LockoutDuration: 10 * time.Millisecond,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "alice")
	rl.RecordFailure("1.2.3.4", "alice")

	allowed, _ := rl.Allow("1.2.3.4", "alice")
	assert.False(t, allowed)

	time.Sleep(25 * time.Millisecond)

	allowed, _ = rl.Allow("1.2.3.4", "alice")
	assert.True(t, allowed)
}
