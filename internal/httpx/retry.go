package httpx

import (
	"context"
	"math"
	"time"

	"github.com/avast/retry-go"
)

// Items reader defaults.
const (
	DefaultMaxAttempts   = 5
	DefaultRetryInterval = 60 * time.Second
)

// RetryConfig configures a resumable read.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Interval is the pause after a failed attempt.
	Interval time.Duration
	// Factor grows the interval per attempt. Zero or one keeps it fixed.
	Factor float64
	// MaxInterval caps the grown interval. Zero means no cap.
	MaxInterval time.Duration
}

// DefaultRetryConfig returns five attempts sixty seconds apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultRetryInterval,
		Factor:      1,
	}
}

// RetryPolicy computes the pause between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
	Factor      float64
	MaxInterval time.Duration
}

// NewRetryPolicy creates a new retry policy. Unset fields take their defaults.
func NewRetryPolicy(cfg RetryConfig) *RetryPolicy {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}
	if cfg.Factor <= 0 {
		cfg.Factor = 1
	}
	return &RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Interval:    cfg.Interval,
		Factor:      cfg.Factor,
		MaxInterval: cfg.MaxInterval,
	}
}

// Delay returns the pause after the given failed attempt (0-indexed).
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.Interval) * math.Pow(p.Factor, float64(attempt))
	if p.MaxInterval > 0 && delay > float64(p.MaxInterval) {
		delay = float64(p.MaxInterval)
	}
	return time.Duration(delay)
}

// Options returns retry-go options running attempts strictly one after the
// other. Every error is retried unless wrapped with retry.Unrecoverable, only
// the last one is reported, and the pause follows Delay. onRetry runs after
// each failed attempt but the last.
func (p *RetryPolicy) Options(ctx context.Context, onRetry func(attempt uint, err error)) []retry.Option {
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(p.MaxAttempts)),
		retry.LastErrorOnly(true),
		retry.RetryIf(retry.IsRecoverable),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return p.Delay(int(n))
		}),
	}
	if onRetry != nil {
		last := uint(p.MaxAttempts) - 1
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			if n < last {
				onRetry(n, err)
			}
		}))
	}
	return opts
}
