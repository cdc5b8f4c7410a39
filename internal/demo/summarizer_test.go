package demo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaye773/summarizer-core/internal/job"
)

type recordingSink struct {
	fractions []float64
	messages  []string
}

func (r *recordingSink) Progress(fraction float64, message string) {
	r.fractions = append(r.fractions, fraction)
	r.messages = append(r.messages, message)
}

func TestSummarizer_ReportsProgressAndResult(t *testing.T) {
	s := &Summarizer{StepDelay: time.Millisecond}
	j := job.New(job.KindVideo, job.PriorityMedium, job.Payload{URL: "https://example.com/watch/abc123"}, "c1", 0)
	sink := &recordingSink{}

	result, err := s.Summarize(t.Context(), j, sink)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "abc123", result.Title)
	assert.Contains(t, result.SummaryExcerpt, "abc123")
	assert.Equal(t, "generated", result.Source)

	assert.Equal(t, []float64{0.25, 0.6, 0.9}, sink.fractions)
	assert.Len(t, sink.messages, 3)
}

func TestSummarizer_RejectsMissingURL(t *testing.T) {
	s := &Summarizer{StepDelay: time.Millisecond}
	j := job.New(job.KindVideo, job.PriorityMedium, job.Payload{}, "c1", 0)

	_, err := s.Summarize(t.Context(), j, &recordingSink{})
	require.Error(t, err)
}

func TestSummarizer_HonoursCancellation(t *testing.T) {
	s := &Summarizer{StepDelay: time.Hour}
	j := job.New(job.KindVideo, job.PriorityMedium, job.Payload{URL: "https://example.com/watch/xyz"}, "c1", 0)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := s.Summarize(ctx, j, &recordingSink{})
	require.ErrorIs(t, err, context.Canceled)
}
