package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *stubJob) Name() string        { return j.name }
func (j *stubJob) Description() string { return "stub job" }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_RegisterRejectsNilAndDuplicates(t *testing.T) {
	s := NewScheduler(nil)

	assert.ErrorIs(t, s.Register(nil, Every(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&stubJob{name: "a"}, nil), ErrNilSchedule)

	require.NoError(t, s.Register(&stubJob{name: "a"}, Every(time.Minute)))
	assert.ErrorIs(t, s.Register(&stubJob{name: "a"}, Every(time.Minute)), ErrJobAlreadyExists)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.Register(&stubJob{name: "a"}, Every(time.Hour)))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(nil)
	job := &stubJob{name: "audit"}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	require.NoError(t, s.RunNow(context.Background(), "audit"))
	assert.Equal(t, int64(1), job.runs.Load())

	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrJobNotFound)
}

func TestScheduler_RunNowPropagatesJobError(t *testing.T) {
	s := NewScheduler(nil)
	job := &stubJob{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	assert.Error(t, s.RunNow(context.Background(), "failing"))
}

func TestIntervalSchedule_Next(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	next := Every(15 * time.Minute).Next(now)
	assert.Equal(t, now.Add(15*time.Minute), next)
}
