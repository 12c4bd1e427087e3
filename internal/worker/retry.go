package worker

import (
	"math"
	"time"
)

// RetryPolicy controls re-attempts of a failed workbook build. A build
// touches both SQLite and the export directory, so transient failures get
// a few spaced-out retries before the task goes to the dead letter list.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultExportRetry fills in the policy used when the worker is handed a
// zero RetryPolicy: three attempts with 2s..1m exponential backoff.
func DefaultExportRetry() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}
}

// NextDelay returns the pause before the given attempt (1-based), growing
// by BackoffFactor from InitialDelay and clamped to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := r.InitialDelay
	if base <= 0 {
		base = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := time.Duration(float64(base) * math.Pow(factor, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = base
	}
	return d
}
