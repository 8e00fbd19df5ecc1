// Package retry provides bounded retry with exponential backoff for external
// calls. The delay before attempt n is InitialInterval * Multiplier^(n-1).
// The sleep is injectable so tests can observe the exact backoff schedule
// without waiting on real timers.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Config configures the retry behavior.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// Multiplier scales the interval after each failed attempt.
	Multiplier float64
	// Sleep waits for d or until ctx is done. Nil means a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig matches the pipeline's LLM-call policy: three retries
// starting at one second, doubling each attempt.
var DefaultConfig = Config{
	MaxRetries:      3,
	InitialInterval: 1 * time.Second,
	Multiplier:      2.0,
}

// Operation represents a retryable operation.
type Operation func(ctx context.Context) error

// Permanent marks an error that must not be retried; Do returns the wrapped
// error immediately without consuming the backoff budget.
type Permanent struct{ Err error }

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Do executes op with bounded retries and exponential backoff. It returns nil
// on the first success, the context error if cancelled, and otherwise the
// last operation error wrapped with the attempt count once the budget is
// exhausted.
func Do(ctx context.Context, op Operation, cfg Config) error {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = timerSleep
	}

	var lastErr error
	interval := cfg.InitialInterval

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("operation cancelled: %w", ctx.Err())
		}

		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info().Int("attempts", attempt+1).Msg("operation succeeded after retries")
			}
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}

		lastErr = err
		if attempt == cfg.MaxRetries {
			break
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", cfg.MaxRetries).
			Float64("next_interval_sec", interval.Seconds()).
			Msg("operation failed, retrying")

		if err := sleep(ctx, interval); err != nil {
			return fmt.Errorf("operation cancelled during retry wait: %w", err)
		}

		interval = time.Duration(float64(interval) * cfg.Multiplier)
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// timerSleep waits on a real timer, honoring context cancellation.
func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
