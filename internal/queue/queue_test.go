package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jaye773/summarizer-core/internal/job"
)

func newJob(priority job.Priority, client string) *job.Job {
	return job.New(job.KindVideo, priority, job.Payload{URL: "https://example.com"}, client, 3)
}

func TestSubmitAndPopOrdersByPriorityThenFIFO(t *testing.T) {
	q := New(Config{MaxSize: 10, RateLimitPerMin: 1000})

	low := newJob(job.PriorityLow, "c1")
	high1 := newJob(job.PriorityHigh, "c1")
	high2 := newJob(job.PriorityHigh, "c1")

	require.NoError(t, q.Submit(low))
	require.NoError(t, q.Submit(high1))
	require.NoError(t, q.Submit(high2))

	ctx := context.Background()
	first, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.Same(t, high1, first)

	second, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.Same(t, high2, second)

	third, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.Same(t, low, third)
}

func TestSubmitRejectsWhenFull(t *testing.T) {
	q := New(Config{MaxSize: 1, RateLimitPerMin: 1000})
	require.NoError(t, q.Submit(newJob(job.PriorityMedium, "c1")))

	err := q.Submit(newJob(job.PriorityMedium, "c1"))
	require.Error(t, err)
	reason, ok := RejectedReason(err)
	require.True(t, ok)
	require.Equal(t, ReasonQueueFull, reason)
}

func TestSubmitRejectsWhenRateLimited(t *testing.T) {
	q := New(Config{MaxSize: 100, RateLimitPerMin: 1})
	require.NoError(t, q.Submit(newJob(job.PriorityMedium, "c1")))

	err := q.Submit(newJob(job.PriorityMedium, "c1"))
	require.Error(t, err)
	reason, ok := RejectedReason(err)
	require.True(t, ok)
	require.Equal(t, ReasonRateLimited, reason)

	// a different client is unaffected
	require.NoError(t, q.Submit(newJob(job.PriorityMedium, "c2")))
}

func TestPopBlocksUntilSubmit(t *testing.T) {
	q := New(Config{MaxSize: 10, RateLimitPerMin: 1000})

	result := make(chan *job.Job, 1)
	go func() {
		j, err := q.Pop(context.Background(), 2*time.Second)
		require.NoError(t, err)
		result <- j
	}()

	time.Sleep(50 * time.Millisecond)
	j := newJob(job.PriorityHigh, "c1")
	require.NoError(t, q.Submit(j))

	select {
	case got := <-result:
		require.Same(t, j, got)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Submit")
	}
}

func TestPopTimesOut(t *testing.T) {
	q := New(Config{MaxSize: 10, RateLimitPerMin: 1000})
	_, err := q.Pop(context.Background(), 20*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDrainUnblocksPoppersWithShutdown(t *testing.T) {
	q := New(Config{MaxSize: 10, RateLimitPerMin: 1000})

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Pop(context.Background(), 5*time.Second)
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	left := q.Drain()
	require.Zero(t, left)

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrShutdown)
	case <-time.After(time.Second):
		t.Fatal("Drain did not unblock Pop")
	}
}

func TestSizeReflectsDepth(t *testing.T) {
	q := New(Config{MaxSize: 10, RateLimitPerMin: 1000})
	require.Equal(t, 0, q.Size())
	require.NoError(t, q.Submit(newJob(job.PriorityMedium, "c1")))
	require.Equal(t, 1, q.Size())
}
