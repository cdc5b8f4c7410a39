// Package statestore implements the process-wide, concurrency-safe
// job_id -> Job mapping with a write-through memory model and a periodic
// flush to an injected PersistentStore, modeled on the teacher's
// JobQueue[T].Start/Stop lifecycle goroutine management.
package statestore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jaye773/summarizer-core/internal/job"
	"github.com/jaye773/summarizer-core/internal/logging"
)

// PersistentStore is the injected durability backend. It is opaque to
// format; the core ships a JSON-on-disk implementation under jsonstore.
type PersistentStore interface {
	Load() ([]*job.Job, error)
	Save(jobs []*job.Job) error
}

// Filter narrows List results. A zero-value Filter matches everything.
type Filter struct {
	ClientID    string
	Status      job.Status
	HasStatus   bool
	HasClientID bool
}

// Config tunes the store's flush and retention cadence.
type Config struct {
	FlushInterval    time.Duration
	RetentionWindow  time.Duration
	RetentionSweep   time.Duration
	Logger           logging.StandardLogger
	Persistent       PersistentStore
}

const (
	DefaultFlushInterval   = 5 * time.Second
	DefaultRetentionWindow = 24 * time.Hour
	DefaultRetentionSweep  = time.Hour
)

func defaultConfig(cfg Config) Config {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = DefaultRetentionWindow
	}
	if cfg.RetentionSweep <= 0 {
		cfg.RetentionSweep = DefaultRetentionSweep
	}
	if cfg.Logger == nil {
		cfg.Logger = &logging.DiscardLogger{}
	}
	return cfg
}

// Store is the concurrency-safe job map plus its background flusher and
// retention sweep.
type Store struct {
	cfg Config
	log logging.StandardLogger

	mu    sync.RWMutex
	jobs  map[string]*job.Job
	dirty bool

	startCtx    context.Context
	startCancel context.CancelFunc
	startWg     sync.WaitGroup
}

// New constructs a Store. Call Start to begin the flush/retention
// goroutines and to hydrate from the persistent backend, if any.
func New(cfg Config) *Store {
	cfg = defaultConfig(cfg)
	return &Store{
		cfg:  cfg,
		log:  cfg.Logger,
		jobs: make(map[string]*job.Job),
	}
}

// Start hydrates the in-memory map from the persistent backend (dropping
// corrupt/partial records with a logged warning rather than failing) and
// launches the flusher and retention sweep goroutines.
func (s *Store) Start(ctx context.Context) error {
	if s.cfg.Persistent != nil {
		loaded, err := s.cfg.Persistent.Load()
		if err != nil {
			s.log.Warnw("state store load failed, starting empty", "err", err)
		} else {
			s.mu.Lock()
			for _, j := range loaded {
				if j == nil || j.ID == "" {
					s.log.Warnw("dropping partial job record on load")
					continue
				}
				s.jobs[j.ID] = j
			}
			s.mu.Unlock()
		}
	}

	s.startCtx, s.startCancel = context.WithCancel(ctx)
	s.startWg.Add(2)
	go s.flushLoop()
	go s.retentionLoop()
	return nil
}

// Stop signals the background goroutines, waits for them, and performs a
// final flush so no job is left unpersisted.
func (s *Store) Stop(ctx context.Context) error {
	if s.startCancel != nil {
		s.startCancel()
	}
	done := make(chan struct{})
	go func() {
		s.startWg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warnw("state store stop: background goroutines did not exit before deadline")
	}
	return s.flush()
}

func (s *Store) flushLoop() {
	defer s.startWg.Done()
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.startCtx.Done():
			return
		case <-ticker.C:
			if err := s.flush(); err != nil {
				s.log.Warnw("periodic flush failed, will retry next interval", "err", err)
			}
		}
	}
}

func (s *Store) retentionLoop() {
	defer s.startWg.Done()
	ticker := time.NewTicker(s.cfg.RetentionSweep)
	defer ticker.Stop()
	for {
		select {
		case <-s.startCtx.Done():
			return
		case <-ticker.C:
			n := s.PurgeOlderThan(time.Now().Add(-s.cfg.RetentionWindow), true)
			if n > 0 {
				s.log.Infow("retention sweep purged jobs", "count", n)
			}
		}
	}
}

func (s *Store) flush() error {
	if s.cfg.Persistent == nil {
		return nil
	}
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := make([]*job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		snapshot = append(snapshot, j.Clone())
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.cfg.Persistent.Save(snapshot); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a job record.
func (s *Store) Upsert(j *job.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = j.Clone()
	s.dirty = true
}

// Get returns a copy of the job, or nil if it does not exist.
func (s *Store) Get(id string) *job.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil
	}
	return j.Clone()
}

// UpdateProgress sets progress and optional message/step on an in-progress
// job without touching status.
func (s *Store) UpdateProgress(id string, progress float64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("statestore: job %s not found", id)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	j.Progress = progress
	if message != "" {
		j.Step = message
	}
	j.UpdatedAt = time.Now()
	s.dirty = true
	return nil
}

// Transition validates and applies a status move, rejecting illegal
// transitions and leaving state unchanged on error.
func (s *Store) Transition(id string, from, to job.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("statestore: job %s not found", id)
	}
	if j.Status != from {
		return &job.TransitionError{From: j.Status, To: to}
	}
	if err := job.Transition(from, to); err != nil {
		return err
	}
	j.Status = to
	j.UpdatedAt = time.Now()
	s.dirty = true
	return nil
}

// List returns copies of every job matching filter.
func (s *Store) List(filter Filter) []*job.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if filter.HasStatus && j.Status != filter.Status {
			continue
		}
		if filter.HasClientID && j.ClientID != filter.ClientID {
			continue
		}
		out = append(out, j.Clone())
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out
}

// PurgeOlderThan removes jobs older than ts. When terminalOnly is true, only
// Completed/Failed/Cancelled jobs are eligible.
func (s *Store) PurgeOlderThan(ts time.Time, terminalOnly bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, j := range s.jobs {
		if j.CreatedAt.After(ts) {
			continue
		}
		if terminalOnly && !j.Status.Terminal() {
			continue
		}
		delete(s.jobs, id)
		count++
	}
	if count > 0 {
		s.dirty = true
	}
	return count
}
