package worker

import (
	"math"
	"time"
)

// RetryPolicy is an exponential backoff. MaxRetries <= 0 retries forever.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy is used for the Sheets mirror.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    8,
		InitialDelay:  2 * time.Second,
		MaxDelay:      5 * time.Minute,
		BackoffFactor: 2,
	}
}

// NextDelay returns the wait before retry number attempt (1-based), capped
// at MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := r.InitialDelay
	if initial <= 0 {
		initial = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := float64(initial) * math.Pow(factor, float64(attempt-1))
	if r.MaxDelay > 0 && d > float64(r.MaxDelay) {
		return r.MaxDelay
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Exhausted reports whether failures so far use up the policy.
func (r RetryPolicy) Exhausted(failures int) bool {
	return r.MaxRetries > 0 && failures > r.MaxRetries
}
