package imagestore

import (
	"context"
	"math"
	"time"
)

// retryConfig holds exponential backoff settings for remote fetches.
type retryConfig struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

func defaultRetryConfig(maxRetries int) retryConfig {
	return retryConfig{
		MaxRetries:      maxRetries,
		BaseDelay:       200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

func (c retryConfig) delay(attempt int) time.Duration {
	d := time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffMultiple, float64(attempt)))
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// withRetry runs fn until it succeeds or MaxRetries retries are spent.
// onRetry is called before every retry with the failed attempt's error.
func withRetry(ctx context.Context, cfg retryConfig, fn func() ([]byte, error), onRetry func(attempt int, err error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if onRetry != nil {
				onRetry(attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.delay(attempt - 1)):
			}
		}

		data, err := fn()
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
