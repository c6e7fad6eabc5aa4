package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilogapp/anilog-server/internal/errors"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: Linear(time.Millisecond)}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: Linear(time.Millisecond)}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.Transient("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoReturnsLastErrorOnExhaustion(t *testing.T) {
	p := Policy{MaxAttempts: 2, Delay: Linear(time.Millisecond)}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.Transient("still down")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	p := Policy{
		MaxAttempts: 5,
		Delay:       Linear(time.Millisecond),
		ShouldRetry: func(err error) bool { return errors.Is(err, errors.ErrTransient) },
	}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.NotFound("gone")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	p := Policy{MaxAttempts: 10, Delay: Linear(time.Hour)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(context.Context) error {
			return errors.Transient("always")
		})
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestZeroPolicyRunsOnce(t *testing.T) {
	var p Policy

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.Transient("nope")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestLinearDelayGrowth(t *testing.T) {
	d := Linear(10 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, d(1))
	assert.Equal(t, 30*time.Millisecond, d(3))
}
