// Package retry holds the bounded retry policy used around calls to the
// generation provider.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/meannnn/MindM/internal/platform/httpx"
)

// RetryableError is implemented by errors that know whether another attempt may succeed.
type RetryableError interface {
	error
	IsRetryable() bool
}

// DelayHinter is implemented by errors that carry a server-suggested wait.
type DelayHinter interface {
	RetryDelay() time.Duration
}

type Policy struct {
	// MaxRetries is the number of additional attempts after the first one.
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
	Jitter     bool

	// HonorRetryAfter lets a DelayHinter error stretch the wait, capped by MaxBackoff.
	HonorRetryAfter bool

	// Retryable decides whether err is worth another attempt. Defaults to IsRetryable.
	Retryable func(err error) bool
	// OnRetry is called before sleeping ahead of attempt+1.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func Default() Policy {
	return Policy{MaxRetries: 2, Backoff: time.Second, MaxBackoff: 10 * time.Second, Jitter: true, HonorRetryAfter: true}
}

// NoBackoff keeps the attempt bound of p but never sleeps.
func NoBackoff(p Policy) Policy {
	p.Backoff = 0
	p.MaxBackoff = 0
	p.Jitter = false
	p.HonorRetryAfter = false
	return p
}

// IsRetryable defers to RetryableError when present, then to transient network classification.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.IsRetryable()
	}
	return httpx.IsTransientNetworkError(err)
}

// Do runs fn until it succeeds, returns a non-retryable error, or the attempt bound is reached.
// The returned attempts count includes the first call.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (attempts int, err error) {
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	wait := p.Backoff

	for attempt := 0; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err == nil {
				err = cerr
			}
			return attempt, err
		}
		err = fn(ctx, attempt)
		if err == nil {
			return attempt + 1, nil
		}
		if attempt >= maxRetries || !retryable(err) {
			return attempt + 1, err
		}

		sleepFor := wait
		if p.Jitter {
			sleepFor = httpx.JitterSleep(sleepFor)
		}
		var hint DelayHinter
		if p.HonorRetryAfter && errors.As(err, &hint) && hint.RetryDelay() > sleepFor {
			sleepFor = hint.RetryDelay()
		}
		if p.MaxBackoff > 0 && sleepFor > p.MaxBackoff {
			sleepFor = p.MaxBackoff
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err, sleepFor)
		}
		if serr := sleepWithCtx(ctx, sleepFor); serr != nil {
			return attempt + 1, err
		}
		wait *= 2
	}
}

func sleepWithCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
