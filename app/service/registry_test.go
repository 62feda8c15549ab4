package service

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"vidai-studio/app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobIDFormat(t *testing.T) {
	hex8 := regexp.MustCompile(`^[0-9a-f]{8}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, hex8, NewJobID())
	}
}

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(DefaultJobTTL)

	_, ok := r.Get("missing")
	assert.False(t, ok)

	job := model.Job{ID: "abc12345", Status: model.JobStatusRunning, Step: model.StepQueued}
	require.NoError(t, r.Create(job))

	got, ok := r.Get("abc12345")
	require.True(t, ok)
	assert.Equal(t, model.StepQueued, got.Step)
}

func TestRegistryCreateRejectsDuplicate(t *testing.T) {
	r := NewRegistry(DefaultJobTTL)
	job := model.Job{ID: "abc12345", Status: model.JobStatusRunning}
	require.NoError(t, r.Create(job))
	assert.Error(t, r.Create(job))
}

func TestRegistryUpdateAbsentIsNoop(t *testing.T) {
	r := NewRegistry(DefaultJobTTL)
	r.Update("missing", func(j *model.Job) { j.Progress = 50 })
	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryTerminalRecordIsFrozen(t *testing.T) {
	r := NewRegistry(DefaultJobTTL)
	require.NoError(t, r.Create(model.Job{ID: "j1", Status: model.JobStatusRunning}))

	r.Update("j1", func(j *model.Job) {
		j.Status = model.JobStatusDone
		j.Progress = 100
	})
	r.Update("j1", func(j *model.Job) {
		j.Status = model.JobStatusError
		j.Progress = 0
	})

	got, ok := r.Get("j1")
	require.True(t, ok)
	assert.Equal(t, model.JobStatusDone, got.Status)
	assert.Equal(t, 100, got.Progress)
}

func TestRegistryConcurrentDistinctJobs(t *testing.T) {
	r := NewRegistry(DefaultJobTTL)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("job-%04d", i)
		require.NoError(t, r.Create(model.Job{ID: id, Status: model.JobStatusRunning}))

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for p := 0; p <= 100; p += 10 {
				progress := p
				r.Update(id, func(j *model.Job) { j.Progress = progress })
			}
		}(id)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		got, ok := r.Get(fmt.Sprintf("job-%04d", i))
		require.True(t, ok)
		assert.Equal(t, 100, got.Progress)
	}
}
