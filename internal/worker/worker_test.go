package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsSubmittedTasks(t *testing.T) {
	wp := NewWorkerPool(3)

	var ran atomic.Int32
	for range 10 {
		ok := wp.Submit(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
		require.True(t, ok)
	}
	wp.Submit(func(ctx context.Context) error { return errors.New("boom") })

	require.NoError(t, wp.Shutdown(context.Background()))
	assert.EqualValues(t, 10, ran.Load())
}

func TestWorkerPool_RejectsAfterShutdown(t *testing.T) {
	wp := NewWorkerPool(1)
	require.NoError(t, wp.Shutdown(context.Background()))

	assert.False(t, wp.Submit(func(ctx context.Context) error { return nil }))
	assert.NoError(t, wp.Shutdown(context.Background()))
}

func TestWorkerPool_ShutdownDeadlineCancelsTasks(t *testing.T) {
	wp := NewWorkerPool(1)

	started := make(chan struct{})
	wp.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, wp.Shutdown(ctx), context.DeadlineExceeded)
}
