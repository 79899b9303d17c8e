package indexer

import (
	"context"
	"errors"
	"time"
)

const (
	defaultRetryDelay = 100 * time.Millisecond
	maxRetryDelay     = 30 * time.Second
)

// backoff retries RPC calls with a doubling delay capped at maxRetryDelay.
type backoff struct {
	retries int
	base    time.Duration
}

func newBackoff(retries int, base time.Duration) backoff {
	if retries < 0 {
		retries = 0
	}
	if base <= 0 {
		base = defaultRetryDelay
	}
	return backoff{retries: retries, base: base}
}

// delay returns the wait before retry n (0-based).
func (b backoff) delay(n int) time.Duration {
	d := b.base
	for i := 0; i < n && d < maxRetryDelay; i++ {
		d *= 2
	}
	return min(d, maxRetryDelay)
}

// do runs fn at most retries+1 times. Context errors end it early.
func (b backoff) do(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= b.retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(b.delay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return err
}
