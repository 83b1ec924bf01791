package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/insta-saver/pkg/logger"
)

type Config struct {
	// MaxAttempts bounds the total number of attempts, including the first.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:     4,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
	}
}

// Permanent marks err as non-retryable; Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs operation with exponential backoff and jitter until it succeeds,
// returns a permanent error, the attempt budget is spent, or ctx is done.
func Do(ctx context.Context, log logger.Logger, operationName string, operation func() error, cfg Config) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.Reset()

	maxRetries := uint64(0)
	if cfg.MaxAttempts > 1 {
		maxRetries = uint64(cfg.MaxAttempts - 1)
	}

	retryable := backoff.WithMaxRetries(bo, maxRetries)
	retryableWithContext := backoff.WithContext(retryable, ctx)

	notify := func(err error, t time.Duration) {
		log.Warn(
			"Operation failed, retrying...",
			"operation", operationName,
			"error", err,
			"next_attempt_in", t.Round(time.Millisecond).String(),
		)
	}

	return backoff.RetryNotify(operation, retryableWithContext, notify)
}
