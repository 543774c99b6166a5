package http

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = time.Second
)

// RetryPolicy bounds how often a network failure is retried and how long to wait in between.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
	// Timer replaces the wall clock between attempts; tests use it to observe delays.
	Timer retry.Timer
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
	}
}

// Backoff returns the wait after the n-th failed attempt (0-based): Delay * 2^n, capped by MaxDelay.
func (p RetryPolicy) Backoff(n uint) time.Duration {
	// Keep the shift inside int64.
	if n > 30 {
		n = 30
	}

	d := p.Delay << n
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func (p RetryPolicy) options(ctx context.Context, onRetry retry.OnRetryFunc) []retry.Option {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return p.Backoff(n)
		}),
		retry.RetryIf(IsNetworkError),
		retry.LastErrorOnly(true),
		retry.OnRetry(onRetry),
	}
	if p.MaxDelay > 0 {
		opts = append(opts, retry.MaxDelay(p.MaxDelay))
	}
	if p.Timer != nil {
		opts = append(opts, retry.WithTimer(p.Timer))
	}

	return opts
}
