// Package worker implements the fixed-size worker pool pulling jobs from
// the priority queue, invoking the injected Summarizer, and driving the job
// through the state store and event bus. It keeps the teacher's
// worker.Worker[T] concurrency gate and panic-recovery shape
// (lib/jobqueue/worker/worker.go) but drops the SQL-specific lease-renewal
// and transaction-enqueue machinery, since our queue is in-memory.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jaye773/summarizer-core/internal/classify"
	"github.com/jaye773/summarizer-core/internal/eventbus"
	"github.com/jaye773/summarizer-core/internal/job"
	"github.com/jaye773/summarizer-core/internal/logging"
	"github.com/jaye773/summarizer-core/internal/queue"
	"github.com/jaye773/summarizer-core/internal/statestore"
)

// Summarizer is the injected callback the pool invokes for every job. It
// must be safe to call concurrently from any worker goroutine and must
// honour cancellation via ctx.
type Summarizer interface {
	Summarize(ctx context.Context, j *job.Job, sink ProgressSink) (*job.Result, error)
}

// SummarizerFunc adapts a plain function to Summarizer.
type SummarizerFunc func(ctx context.Context, j *job.Job, sink ProgressSink) (*job.Result, error)

func (f SummarizerFunc) Summarize(ctx context.Context, j *job.Job, sink ProgressSink) (*job.Result, error) {
	return f(ctx, j, sink)
}

// ProgressSink is handed to the Summarizer so it can report fractional
// progress without knowing about the state store or event bus.
type ProgressSink interface {
	Progress(fraction float64, message string)
}

// OnFinalFailureFn is invoked once a job has exhausted retries and
// transitioned to Failed, mirroring the teacher's OnFailureFn hook.
type OnFinalFailureFn func(j *job.Job, err error)

// Config tunes pool behavior.
type Config struct {
	WorkerCount             int
	MaxRetries              int
	GracePeriod             time.Duration
	ProgressThrottleInterval time.Duration
	Logger                  logging.StandardLogger
	OnFinalFailure          OnFinalFailureFn
	Metrics                 *Metrics
}

const (
	DefaultWorkerCount             = 3
	DefaultProgressThrottleInterval = 200 * time.Millisecond
	DefaultGracePeriod             = 30 * time.Second
)

func defaultConfig(cfg Config) Config {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = classify.DefaultMaxRetries
	}
	if cfg.ProgressThrottleInterval <= 0 {
		cfg.ProgressThrottleInterval = DefaultProgressThrottleInterval
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = &logging.DiscardLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewNoopMetrics()
	}
	return cfg
}

// Pool is the fixed set of worker loops sharing a Queue.
type Pool struct {
	cfg        Config
	log        logging.StandardLogger
	queue      *queue.Queue
	store      *statestore.Store
	bus        *eventbus.Bus
	summarizer Summarizer
	expander   *PlaylistExpander

	startCtx    context.Context
	startCancel context.CancelFunc
	wg          sync.WaitGroup

	retryWg sync.WaitGroup
}

// New constructs a Pool. Call Start to launch worker goroutines.
func New(cfg Config, q *queue.Queue, store *statestore.Store, bus *eventbus.Bus, summarizer Summarizer) *Pool {
	cfg = defaultConfig(cfg)
	return &Pool{
		cfg:        cfg,
		log:        cfg.Logger,
		queue:      q,
		store:      store,
		bus:        bus,
		summarizer: summarizer,
		expander:   &PlaylistExpander{pacing: time.Second},
	}
}

// Start launches cfg.WorkerCount worker loops.
func (p *Pool) Start(ctx context.Context) {
	p.startCtx, p.startCancel = context.WithCancel(ctx)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.runLoop(i)
	}
}

// Stop signals every worker loop, waits up to GracePeriod for in-flight jobs
// to finish, drains the queue, and flushes the state store. No job is
// acknowledged complete before this returns.
func (p *Pool) Stop(ctx context.Context) error {
	p.startCancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(p.cfg.GracePeriod):
		p.log.Warnw("worker pool stop: grace period elapsed with workers still running")
	case <-ctx.Done():
	}

	left := p.queue.Drain()
	if left > 0 {
		p.log.Infow("queue drained with jobs still pending for next startup", "count", left)
	}

	p.retryWg.Wait()
	return p.store.Stop(ctx)
}

func (p *Pool) runLoop(index int) {
	defer p.wg.Done()
	name := fmt.Sprintf("worker-%d", index)
	for {
		if p.startCtx.Err() != nil {
			return
		}
		j, err := p.queue.Pop(p.startCtx, time.Second)
		if err != nil {
			if err == queue.ErrShutdown || p.startCtx.Err() != nil {
				return
			}
			continue // timeout: loop back and re-check shutdown
		}
		p.runJob(name, j)
	}
}

// runJob executes one job end to end, recovering from any panic raised by
// the summarizer the way the teacher's worker.runJob recovers around
// jobReg.fn.
func (p *Pool) runJob(workerName string, j *job.Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("worker recovered from panic executing job", "worker", workerName, "job_id", j.ID, "panic", r)
			p.handleFailure(j, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := p.store.Transition(j.ID, j.Status, job.StatusInProgress); err != nil {
		p.log.Warnw("job transition to in_progress rejected", "job_id", j.ID, "err", err)
		return
	}
	p.cfg.Metrics.RecordActiveDelta(1)
	defer p.cfg.Metrics.RecordActiveDelta(-1)

	p.bus.Publish(eventbus.Event{
		Type: eventbus.EventJobStarted,
		Data: map[string]any{"job_id": j.ID},
	})

	sink := newThrottledSink(p.store, p.bus, j.ID, p.cfg.ProgressThrottleInterval)

	start := time.Now()
	var result *job.Result
	var err error
	if j.Kind == job.KindPlaylist {
		result, err = p.expander.Run(p.startCtx, j, p.summarizer, sink)
	} else {
		result, err = p.summarizer.Summarize(p.startCtx, j, sink)
	}
	p.cfg.Metrics.RecordJobDuration(time.Since(start))

	if err != nil {
		p.handleFailure(j, err)
		return
	}

	p.handleSuccess(j, result)
}

func (p *Pool) handleSuccess(j *job.Job, result *job.Result) {
	current := p.store.Get(j.ID)
	if current == nil {
		return
	}
	if err := p.store.UpdateProgress(j.ID, 1.0, ""); err != nil {
		p.log.Warnw("failed to set final progress", "job_id", j.ID, "err", err)
	}
	if err := p.store.Transition(j.ID, job.StatusInProgress, job.StatusCompleted); err != nil {
		p.log.Warnw("job transition to completed rejected", "job_id", j.ID, "err", err)
		return
	}
	// result is stored separately from status since the store's Transition
	// contract only moves status; a direct upsert folds in the payload.
	current.Result = result
	current.Status = job.StatusCompleted
	current.Progress = 1.0
	p.store.Upsert(current)

	p.bus.Publish(eventbus.Event{
		Type: eventbus.EventJobComplete,
		Data: map[string]any{
			"job_id":                 j.ID,
			"result_summary_excerpt": result.SummaryExcerpt,
			"title":                  result.Title,
			"source":                 result.Source,
		},
	})
}

func (p *Pool) handleFailure(j *job.Job, err error) {
	p.cfg.Metrics.RecordJobFailure()

	classification := classify.Classify(err)
	decision := classify.DecideRetry(classification, j.Attempt, p.cfg.MaxRetries)

	current := p.store.Get(j.ID)
	if current == nil {
		return
	}
	current.LastError = &job.LastError{
		Category:   classification.Category,
		Message:    err.Error(),
		Retriable:  classification.Retriable,
		OccurredAt: time.Now(),
	}

	if decision.Retry {
		current.Attempt++
		p.store.Upsert(current) // persist attempt/last_error before the status transition
		if err := p.store.Transition(j.ID, job.StatusInProgress, job.StatusRetry); err != nil {
			p.log.Warnw("transition to retry rejected", "job_id", j.ID, "err", err)
			return
		}
		current.Status = job.StatusRetry

		p.bus.Publish(eventbus.Event{
			Type: eventbus.EventJobRetry,
			Data: map[string]any{
				"job_id":         j.ID,
				"attempt":        current.Attempt,
				"error_category": string(classification.Category),
				"delay_ms":       decision.Delay.Milliseconds(),
			},
		})

		p.scheduleRequeue(current, decision.Delay)
		return
	}

	p.store.Upsert(current) // persist last_error before the status transition
	if err := p.store.Transition(j.ID, job.StatusInProgress, job.StatusFailed); err != nil {
		p.log.Warnw("transition to failed rejected", "job_id", j.ID, "err", err)
		return
	}
	current.Status = job.StatusFailed

	p.bus.Publish(eventbus.Event{
		Type: eventbus.EventJobFailed,
		Data: map[string]any{
			"job_id":         j.ID,
			"error_category": string(classification.Category),
			"message":        err.Error(),
		},
	})

	if p.cfg.OnFinalFailure != nil {
		p.cfg.OnFinalFailure(current, err)
	}
}

// scheduleRequeue waits delay, transitions the job back to Pending, and
// resubmits it onto the queue. The wait is tracked by retryWg so Stop can
// drain it before flushing state.
func (p *Pool) scheduleRequeue(j *job.Job, delay time.Duration) {
	p.retryWg.Add(1)
	go func() {
		defer p.retryWg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-p.startCtx.Done():
			return
		}

		if err := p.store.Transition(j.ID, job.StatusRetry, job.StatusPending); err != nil {
			p.log.Warnw("retry transition to pending rejected", "job_id", j.ID, "err", err)
			return
		}
		j.Status = job.StatusPending
		if err := p.queue.Submit(j); err != nil {
			p.log.Warnw("re-enqueue after backoff failed", "job_id", j.ID, "err", err)
		}
	}()
}
