package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRunsTasks(t *testing.T) {
	m := metrics.New()
	q, err := New(4, time.Second, nil, m)
	require.NoError(t, err)
	defer q.Shutdown(time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 3; i++ {
		wg.Add(1)
		ok := q.Submit("count", func(ctx context.Context) error {
			defer wg.Done()
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		})
		require.True(t, ok)
	}
	wg.Wait()

	assert.Equal(t, 3, ran)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TasksSubmitted.WithLabelValues("count")))
}

func TestTaskErrorsAndPanicsAreSwallowed(t *testing.T) {
	m := metrics.New()
	q, err := New(2, time.Second, nil, m)
	require.NoError(t, err)
	defer q.Shutdown(time.Second)

	require.True(t, q.Submit("flaky", func(ctx context.Context) error {
		return errors.New("store down")
	}))
	require.True(t, q.Submit("flaky", func(ctx context.Context) error {
		panic("boom")
	}))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.TasksFailed.WithLabelValues("flaky")) == 2
	}, 2*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	require.True(t, q.Submit("after", func(ctx context.Context) error {
		close(done)
		return nil
	}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stopped accepting work after a panic")
	}
}

func TestSaturatedQueueDrops(t *testing.T) {
	m := metrics.New()
	q, err := New(1, time.Second, nil, m)
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, q.Submit("slow", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.False(t, q.Submit("extra", func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksDropped.WithLabelValues("extra")))

	close(release)
	assert.NoError(t, q.Shutdown(2*time.Second))
	assert.False(t, q.Submit("late", func(ctx context.Context) error { return nil }))
}

func TestTaskContextHasDeadline(t *testing.T) {
	q, err := New(1, 50*time.Millisecond, nil, nil)
	require.NoError(t, err)
	defer q.Shutdown(time.Second)

	got := make(chan error, 1)
	require.True(t, q.Submit("deadline", func(ctx context.Context) error {
		<-ctx.Done()
		got <- ctx.Err()
		return nil
	}))
	select {
	case err := <-got:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("task context never expired")
	}
}
