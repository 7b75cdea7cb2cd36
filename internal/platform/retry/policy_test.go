package retry

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagErr struct{ retry bool }

func (e flagErr) Error() string     { return "flag error" }
func (e flagErr) IsRetryable() bool { return e.retry }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestDoRetriesTransientUpToBound(t *testing.T) {
	p := NoBackoff(Default())
	calls := 0

	attempts, err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return timeoutErr{}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	p := NoBackoff(Default())
	calls := 0

	attempts, err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return flagErr{retry: false}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDoSucceedsAfterRetry(t *testing.T) {
	p := NoBackoff(Default())
	var seen []int

	attempts, err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		seen = append(seen, attempt)
		if attempt == 0 {
			return flagErr{retry: true}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []int{0, 1}, seen)
}

func TestDoHonoursCancellation(t *testing.T) {
	p := Policy{MaxRetries: 5, Backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	attempts, err := p.Do(ctx, func(ctx context.Context, attempt int) error {
		cancel()
		return flagErr{retry: true}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(timeoutErr{}))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(flagErr{retry: false}))
}

type hintErr struct{ after time.Duration }

func (hintErr) Error() string               { return "throttled" }
func (hintErr) IsRetryable() bool           { return true }
func (e hintErr) RetryDelay() time.Duration { return e.after }

func TestDoRetryAfterHint(t *testing.T) {
	cases := []struct {
		name  string
		honor bool
		hint  time.Duration
		want  time.Duration
	}{
		{"ignored", false, time.Hour, time.Millisecond},
		{"stretches wait", true, 20 * time.Millisecond, 20 * time.Millisecond},
		{"capped", true, time.Hour, 30 * time.Millisecond},
		{"shorter hint keeps backoff", true, time.Microsecond, time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var waits []time.Duration
			p := Policy{
				MaxRetries:      1,
				Backoff:         time.Millisecond,
				MaxBackoff:      30 * time.Millisecond,
				HonorRetryAfter: tc.honor,
				OnRetry:         func(_ int, _ error, wait time.Duration) { waits = append(waits, wait) },
			}
			_, err := p.Do(context.Background(), func(context.Context, int) error {
				return hintErr{after: tc.hint}
			})
			require.Error(t, err)
			assert.Equal(t, []time.Duration{tc.want}, waits)
		})
	}
}
