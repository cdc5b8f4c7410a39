package worker

import (
	"sync"
	"time"

	"github.com/jaye773/summarizer-core/internal/eventbus"
	"github.com/jaye773/summarizer-core/internal/statestore"
)

// throttledSink updates the state store on every call but only broadcasts a
// job_progress event at most once per interval, bounding event volume the
// way spec requires.
type throttledSink struct {
	store    *statestore.Store
	bus      *eventbus.Bus
	jobID    string
	interval time.Duration

	mu       sync.Mutex
	lastSent time.Time
}

func newThrottledSink(store *statestore.Store, bus *eventbus.Bus, jobID string, interval time.Duration) *throttledSink {
	return &throttledSink{store: store, bus: bus, jobID: jobID, interval: interval}
}

func (s *throttledSink) Progress(fraction float64, message string) {
	_ = s.store.UpdateProgress(s.jobID, fraction, message)

	s.mu.Lock()
	now := time.Now()
	if now.Sub(s.lastSent) < s.interval {
		s.mu.Unlock()
		return
	}
	s.lastSent = now
	s.mu.Unlock()

	s.bus.Publish(eventbus.Event{
		Type: eventbus.EventJobProgress,
		Data: map[string]any{
			"job_id":   s.jobID,
			"progress": fraction,
			"message":  message,
		},
	})
}
