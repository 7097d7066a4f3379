package indexing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/search-service/pkg/logger"
)

func newFastRetry() *RetryLogic {
	return NewRetryLogic(logger.NewNop()).WithBaseDelay(time.Millisecond)
}

func TestExecuteWithRetrySucceedsFirstAttempt(t *testing.T) {
	r := newFastRetry()

	calls := 0
	err := r.ExecuteWithRetry(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteWithRetryRecoversAfterFailure(t *testing.T) {
	r := newFastRetry()

	calls := 0
	err := r.ExecuteWithRetry(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetryExhaustsAttempts(t *testing.T) {
	r := newFastRetry().WithMaxRetries(2)

	cause := errors.New("persistent failure")
	calls := 0
	err := r.ExecuteWithRetry(context.Background(), func(_ context.Context) error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, cause)
}

func TestExecuteWithRetryHonorsCancellation(t *testing.T) {
	r := NewRetryLogic(logger.NewNop()).WithBaseDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- r.ExecuteWithRetry(ctx, func(_ context.Context) error {
			return errors.New("always fails")
		})
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("retry did not stop after context cancellation")
	}
}
