package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jaye773/summarizer-core/internal/job"
)

// PlaylistExpander processes a Playlist job's video URLs sequentially within
// the owning worker goroutine, pacing 1s between items and rescaling each
// sub-operation's progress onto the parent job's [0,1] range. There is
// intentionally no concurrency within a playlist.
type PlaylistExpander struct {
	pacing time.Duration
}

// subScaledSink rescales a single sub-operation's [0,1] progress onto
// [index/total, (index+1)/total] of the parent job.
type subScaledSink struct {
	parent     ProgressSink
	index, total int
	label      string
}

func (s *subScaledSink) Progress(fraction float64, message string) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	scaled := (float64(s.index) + fraction) / float64(s.total)
	msg := message
	if s.label != "" {
		if msg != "" {
			msg = fmt.Sprintf("%s: %s", s.label, msg)
		} else {
			msg = s.label
		}
	}
	s.parent.Progress(scaled, msg)
}

// Run executes every URL in j.Payload.URLs as its own video job, in order,
// with a mandatory pacing delay between items.
func (e *PlaylistExpander) Run(ctx context.Context, j *job.Job, s Summarizer, sink ProgressSink) (*job.Result, error) {
	urls := j.Payload.URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("playlist job %s has no videos", j.ID)
	}

	var last *job.Result
	for i, u := range urls {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		subJob := j.Clone()
		subJob.Kind = job.KindVideo
		subJob.Payload = job.Payload{URL: u, Model: j.Payload.Model}

		sub := &subScaledSink{parent: sink, index: i, total: len(urls), label: fmt.Sprintf("video %d/%d", i+1, len(urls))}

		result, err := s.Summarize(ctx, subJob, sub)
		if err != nil {
			return nil, fmt.Errorf("playlist item %d/%d (%s): %w", i+1, len(urls), u, err)
		}
		last = result

		if i < len(urls)-1 {
			timer := time.NewTimer(e.pacing)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}
	}
	return last, nil
}
