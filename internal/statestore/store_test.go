package statestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jaye773/summarizer-core/internal/job"
)

type fakePersistent struct {
	saved   []*job.Job
	saveErr error
}

func (f *fakePersistent) Load() ([]*job.Job, error) { return nil, nil }
func (f *fakePersistent) Save(jobs []*job.Job) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = jobs
	return nil
}

func TestUpsertGetRoundTrip(t *testing.T) {
	s := New(Config{})
	j := job.New(job.KindVideo, job.PriorityHigh, job.Payload{URL: "u"}, "c1", 3)
	s.Upsert(j)

	got := s.Get(j.ID)
	require.NotNil(t, got)
	require.Equal(t, j.ID, got.ID)

	// mutating the returned copy must not affect the stored record
	got.Status = job.StatusCompleted
	require.Equal(t, job.StatusPending, s.Get(j.ID).Status)
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	s := New(Config{})
	j := job.New(job.KindVideo, job.PriorityHigh, job.Payload{}, "c1", 3)
	s.Upsert(j)

	err := s.Transition(j.ID, job.StatusPending, job.StatusCompleted)
	require.Error(t, err)
	require.Equal(t, job.StatusPending, s.Get(j.ID).Status)

	require.NoError(t, s.Transition(j.ID, job.StatusPending, job.StatusInProgress))
	require.Equal(t, job.StatusInProgress, s.Get(j.ID).Status)
}

func TestUpdateProgressClamps(t *testing.T) {
	s := New(Config{})
	j := job.New(job.KindVideo, job.PriorityHigh, job.Payload{}, "c1", 3)
	s.Upsert(j)

	require.NoError(t, s.UpdateProgress(j.ID, 1.5, "almost"))
	require.Equal(t, 1.0, s.Get(j.ID).Progress)

	require.NoError(t, s.UpdateProgress(j.ID, -1, ""))
	require.Equal(t, 0.0, s.Get(j.ID).Progress)
}

func TestListFiltersByStatusAndClient(t *testing.T) {
	s := New(Config{})
	j1 := job.New(job.KindVideo, job.PriorityHigh, job.Payload{}, "c1", 3)
	j2 := job.New(job.KindVideo, job.PriorityHigh, job.Payload{}, "c2", 3)
	s.Upsert(j1)
	s.Upsert(j2)
	require.NoError(t, s.Transition(j1.ID, job.StatusPending, job.StatusInProgress))

	all := s.List(Filter{})
	require.Len(t, all, 2)

	onlyC1 := s.List(Filter{ClientID: "c1", HasClientID: true})
	require.Len(t, onlyC1, 1)
	require.Equal(t, j1.ID, onlyC1[0].ID)

	inProgress := s.List(Filter{Status: job.StatusInProgress, HasStatus: true})
	require.Len(t, inProgress, 1)
	require.Equal(t, j1.ID, inProgress[0].ID)
}

func TestPurgeOlderThanRespectsTerminalOnly(t *testing.T) {
	s := New(Config{})
	old := job.New(job.KindVideo, job.PriorityHigh, job.Payload{}, "c1", 3)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	s.Upsert(old)

	n := s.PurgeOlderThan(time.Now().Add(-time.Hour), true)
	require.Zero(t, n, "pending job should not be purged even if old")

	require.NoError(t, s.Transition(old.ID, job.StatusPending, job.StatusInProgress))
	require.NoError(t, s.Transition(old.ID, job.StatusInProgress, job.StatusCompleted))

	n = s.PurgeOlderThan(time.Now().Add(-time.Hour), true)
	require.Equal(t, 1, n)
	require.Nil(t, s.Get(old.ID))
}

func TestStartStopFlushesOnStop(t *testing.T) {
	fp := &fakePersistent{}
	s := New(Config{FlushInterval: time.Hour, Persistent: fp})
	require.NoError(t, s.Start(context.Background()))

	j := job.New(job.KindVideo, job.PriorityHigh, job.Payload{}, "c1", 3)
	s.Upsert(j)

	require.NoError(t, s.Stop(context.Background()))
	require.Len(t, fp.saved, 1)
	require.Equal(t, j.ID, fp.saved[0].ID)
}
