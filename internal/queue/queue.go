// Package queue implements the bounded, priority-ordered, blocking job queue
// described by the core: jobs pop in (priority asc, submission-sequence asc)
// order, submissions are rate-limited per client, and pop honors a shutdown
// signal the way the teacher's worker.receiveAndRun honors context
// cancellation instead of busy-polling.
package queue

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jaye773/summarizer-core/internal/job"
	"github.com/jaye773/summarizer-core/internal/logging"
)

// Reason distinguishes why a submission was rejected.
type Reason string

const (
	ReasonQueueFull   Reason = "queue_full"
	ReasonRateLimited Reason = "rate_limited"
	ReasonInvalid     Reason = "invalid_input"
)

// RejectedError is returned by Submit when a job is not accepted.
type RejectedError struct {
	Reason Reason
}

func (e *RejectedError) Error() string { return string(e.Reason) }

// ErrShutdown is returned by Pop when the queue has been drained for
// shutdown and will never yield another job.
var ErrShutdown = errors.New("queue: shutdown")

// Config tunes queue behavior. Zero values are replaced with defaults in
// New.
type Config struct {
	MaxSize           int
	RateLimitPerMin   int
	RateLimitWindow   time.Duration
	Logger            logging.StandardLogger
}

const (
	DefaultMaxSize         = 1000
	DefaultRateLimitPerMin = 60
)

func defaultConfig(cfg Config) Config {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = DefaultRateLimitPerMin
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = &logging.DiscardLogger{}
	}
	return cfg
}

// jobHeap adapts *job.Job to container/heap ordering.
type jobHeap []*job.Job

func (h jobHeap) Len() int { return len(h) }
func (h jobHeap) Less(i, j2 int) bool {
	if h[i].Priority != h[j2].Priority {
		return h[i].Priority < h[j2].Priority
	}
	return h[i].Seq() < h[j2].Seq()
}
func (h jobHeap) Swap(i, j2 int) { h[i], h[j2] = h[j2], h[i] }
func (h *jobHeap) Push(x any)    { *h = append(*h, x.(*job.Job)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Queue is a bounded, thread-safe priority queue of jobs.
type Queue struct {
	cfg Config
	log logging.StandardLogger

	mu       sync.Mutex
	items    jobHeap
	seq      uint64
	draining bool
	signal   chan struct{} // replaced with a fresh channel on every wake so waiters never miss one

	limiter *RateLimiter
}

// New constructs a Queue ready to accept submissions.
func New(cfg Config) *Queue {
	cfg = defaultConfig(cfg)
	return &Queue{
		cfg:     cfg,
		log:     cfg.Logger,
		items:   make(jobHeap, 0),
		signal:  make(chan struct{}),
		limiter: NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitWindow),
	}
}

// wake closes and replaces the signal channel, waking every blocked Pop.
// Callers must hold q.mu.
func (q *Queue) wake() {
	close(q.signal)
	q.signal = make(chan struct{})
}

// Submit enqueues j, assigning its submission sequence, subject to capacity
// and rate limiting.
func (q *Queue) Submit(j *job.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.draining {
		return &RejectedError{Reason: ReasonQueueFull}
	}
	if len(q.items) >= q.cfg.MaxSize {
		return &RejectedError{Reason: ReasonQueueFull}
	}

	// Rate limiting is consulted only once a job would otherwise be
	// accepted, so a QueueFull rejection never consumes a client's budget.
	if !q.limiter.Allow(j.ClientID) {
		return &RejectedError{Reason: ReasonRateLimited}
	}

	q.seq++
	j.SetSeq(q.seq)
	heap.Push(&q.items, j)
	q.wake()
	return nil
}

// Pop blocks until a job is available, the timeout elapses, the context is
// cancelled, or the queue is draining for shutdown.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*job.Job, error) {
	var timer *time.Timer
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
	}

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			j := heap.Pop(&q.items).(*job.Job)
			q.mu.Unlock()
			return j, nil
		}
		if q.draining {
			q.mu.Unlock()
			return nil, ErrShutdown
		}
		wait := q.signal
		q.mu.Unlock()

		if timer != nil {
			select {
			case <-wait:
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
				return nil, context.DeadlineExceeded
			}
		} else {
			select {
			case <-wait:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
}

// Size returns the current queue depth.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain marks the queue as shutting down, wakes every blocked popper, and
// returns the count of jobs still queued (left Pending for the next
// startup).
func (q *Queue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.draining = true
	q.wake()
	return len(q.items)
}

// RejectedReason is a convenience accessor for tests/callers that only care
// about the reason, not the error wrapper.
func RejectedReason(err error) (Reason, bool) {
	var re *RejectedError
	if ok := asRejected(err, &re); ok {
		return re.Reason, true
	}
	return "", false
}

func asRejected(err error, target **RejectedError) bool {
	re, ok := err.(*RejectedError)
	if !ok {
		return false
	}
	*target = re
	return true
}
