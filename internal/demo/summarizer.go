// Package demo provides a placeholder Summarizer for cmd/summarizerd: it
// exercises the worker pool's full contract (progress reporting,
// cancellation, playlist sub-operations) without calling out to any real
// transcript/AI provider, which spec.md §1 places out of this core's scope.
package demo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jaye773/summarizer-core/internal/job"
	"github.com/jaye773/summarizer-core/internal/worker"
)

// Summarizer fabricates a deterministic summary from a job's URL after a
// short simulated processing delay, reporting progress along the way. It is
// meant to stand in for a real transcript-fetch-and-summarize pipeline in
// demonstrations and integration tests of the composition root.
type Summarizer struct {
	// StepDelay paces the simulated progress updates; zero uses a sensible
	// default for interactive use.
	StepDelay time.Duration
}

var _ worker.Summarizer = (*Summarizer)(nil)

const defaultStepDelay = 300 * time.Millisecond

// Summarize implements worker.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, j *job.Job, sink worker.ProgressSink) (*job.Result, error) {
	delay := s.StepDelay
	if delay <= 0 {
		delay = defaultStepDelay
	}

	if j.Payload.URL == "" {
		return nil, fmt.Errorf("demo summarizer: job %s has no URL", j.ID)
	}

	steps := []struct {
		fraction float64
		message  string
	}{
		{0.25, "fetching transcript"},
		{0.6, "condensing transcript"},
		{0.9, "formatting summary"},
	}
	for _, step := range steps {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		sink.Progress(step.fraction, step.message)
	}

	title := titleFromURL(j.Payload.URL)
	excerpt := fmt.Sprintf("Demo summary of %q generated without a real transcript provider.", title)

	return &job.Result{
		SummaryExcerpt: excerpt,
		Title:          title,
		Source:         "generated",
	}, nil
}

func titleFromURL(url string) string {
	trimmed := strings.TrimSuffix(url, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx == -1 || idx == len(trimmed)-1 {
		return trimmed
	}
	return trimmed[idx+1:]
}
