// Package retry provides a small bounded-retry policy with a fixed
// delay between attempts, replacing ad-hoc counter loops at call sites.
package retry

import (
	"context"
	"time"
)

// Policy retries an operation up to MaxAttempts times, sleeping Delay
// between attempts. The zero value performs a single attempt.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Default matches the app's historical behavior for flaky lookups:
// three attempts, one second apart.
var Default = Policy{MaxAttempts: 3, Delay: time.Second}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is
// cancelled. The last error is returned; context cancellation wins over
// a pending sleep.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	return err
}
