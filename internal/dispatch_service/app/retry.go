package app

import (
	"context"
	"errors"
	"time"
)

// errAdapterNotSent classifies a 2xx adapter response whose sent flag was
// false. It is reported to the retry callback but never stored as Outcome
// state, so callers can tell "rejected" apart from "errored".
var errAdapterNotSent = errors.New("adapter reported message not sent")

// RetryConfig bounds the retrying send loop of one processor. Each failed
// attempt doubles the delay, starting at InitialDelay and capped at
// MaxDelay.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Operation performs one remote send. A nil error with sent=false means the
// remote service answered but did not deliver; both that and a non-nil error
// are retryable failures.
type Operation func(ctx context.Context) (sent bool, err error)

// Outcome is the terminal result of a retried operation. LastErr is nil
// when the final attempt got an unsuccessful response without transport
// error, which lets the caller distinguish NOT_SENT from FAILED.
type Outcome struct {
	Succeeded bool
	Attempts  int
	LastErr   error
}

// RetryPolicy executes operations under bounded attempts with exponential
// backoff. The backoff sleep blocks the calling goroutine.
type RetryPolicy struct {
	cfg   RetryConfig
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy creates a policy; MaxAttempts below 1 is coerced to 1.
func NewRetryPolicy(cfg RetryConfig) *RetryPolicy {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	return &RetryPolicy{
		cfg: cfg,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// Execute runs op up to MaxAttempts times. onRetry is invoked after every
// failed attempt with the attempt number and failure reason, before the
// backoff sleep. Execute never panics past this boundary; the last failure
// is carried in the Outcome.
func (p *RetryPolicy) Execute(ctx context.Context, op Operation, onRetry func(attempt int, reason error)) Outcome {
	var out Outcome
	delay := p.cfg.InitialDelay

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		out.Attempts = attempt

		sent, err := op(ctx)
		if err == nil && sent {
			out.Succeeded = true
			out.LastErr = nil
			return out
		}
		out.LastErr = err

		reason := err
		if reason == nil {
			reason = errAdapterNotSent
		}
		if onRetry != nil {
			onRetry(attempt, reason)
		}

		if attempt == p.cfg.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, delay); err != nil {
			out.LastErr = err
			return out
		}
		delay *= 2
		if delay > p.cfg.MaxDelay {
			delay = p.cfg.MaxDelay
		}
	}
	return out
}
