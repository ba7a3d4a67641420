package ai

import (
	"context"
	"log/slog"
	"time"
	"wisp/contract"
	"wisp/errors"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// RetryPolicy bounds how often a generative call is attempted.
// After failed attempt i (0-based) the invoker waits BaseDelay * 2^i.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay << attempt
}

func (p RetryPolicy) attempts() int {
	return max(1, p.MaxAttempts)
}

// Invoker wraps a Generator with retry and exponential backoff.
type Invoker struct {
	log       *slog.Logger
	generator contract.Generator
	policy    RetryPolicy
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewInvoker(log *slog.Logger, generator contract.Generator, policy RetryPolicy) *Invoker {
	return &Invoker{
		log:       log,
		generator: generator,
		policy:    policy,
		sleep:     sleepContext,
	}
}

// Invoke calls the generator until it succeeds or the attempt budget is spent.
// Transport failures and non-success statuses are retried, a malformed response is not.
// Intermediate failures are logged and swallowed, the last one is returned wrapped in an ExhaustedError.
func (i *Invoker) Invoke(ctx context.Context, request contract.GenerateRequest) (string, error) {
	if i.generator == nil {
		return "", errors.ErrNotConfigured
	}
	attempts := i.policy.attempts()

	var last error
	for attempt := 0; attempt < attempts; attempt++ {
		text, err := i.generator.Generate(ctx, request)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.IsRetryable(err) {
			i.log.Debug("Generative call not retried", "attempt", attempt+1, "error", err)
			return "", err
		}
		last = err
		if attempt == attempts-1 {
			break
		}

		delay := i.policy.Backoff(attempt)
		i.log.Warn("Generative call failed, retrying",
			"attempt", attempt+1, "max_attempts", attempts, "delay", delay, "error", err)
		if err = i.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", &errors.ExhaustedError{Attempts: attempts, Last: last}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
