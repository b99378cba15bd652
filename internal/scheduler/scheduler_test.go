package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenn/capitolwatch/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.NewNop())

	job := &stubJob{name: "sync", schedule: "0 0 * * * *"}
	require.NoError(t, s.AddJob(job))

	err := s.AddJob(&stubJob{name: "sync", schedule: "0 0 * * * *"})
	assert.Error(t, err, "duplicate job name must be rejected")

	err = s.AddJob(&stubJob{name: "bad", schedule: "not a cron expr"})
	assert.Error(t, err)

	assert.Equal(t, []string{"sync"}, s.GetAllJobs())
}

func TestScheduler_RunJobUnknown(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.RunJob("missing"))
}

func TestScheduler_RunJobRecordsHistory(t *testing.T) {
	s := New(logger.NewNop())
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "sync", schedule: "0 0 * * * *"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, err := s.GetJobHistory("sync")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 1, job.runs)

	stats := s.GetJobStats()
	require.Contains(t, stats, "sync")
	assert.Equal(t, 1, stats["sync"].TotalRuns)
	assert.Equal(t, 1.0, stats["sync"].SuccessRate)
	assert.NotNil(t, stats["sync"].LastSuccess)
}

func TestScheduler_RunJobRetriesOnFailure(t *testing.T) {
	s := New(logger.NewNop())
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "sync", schedule: "0 0 * * * *", err: errors.New("boom")}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, s.maxRetries+1, job.runs)

	history, err := s.GetJobHistory("sync")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Equal(t, "boom", history.Results[0].Error)
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "sync", Success: true})
	}
	assert.Len(t, h.Results, 100)
	assert.Equal(t, 1.0, h.GetSuccessRate())
	assert.Len(t, h.GetLatestResults(10), 10)
}
