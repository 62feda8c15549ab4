package service

import (
	"fmt"
	"time"

	"vidai-studio/app/model"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultJobTTL is how long a job record survives after its last update.
// Completed jobs linger long enough for any polling client to read them,
// then get evicted instead of accumulating for the process lifetime.
const DefaultJobTTL = 2 * time.Hour

// Registry is the concurrent-safe table of in-flight and recent jobs.
// A record is written by exactly one worker goroutine; the registry only
// arbitrates access across distinct job ids and freezes terminal records.
type Registry struct {
	jobs *cache.Cache
}

// NewRegistry creates a registry whose records expire ttl after their last
// update.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{jobs: cache.New(ttl, 10*time.Minute)}
}

// NewJobID returns a short opaque job identifier: 8 hex characters.
func NewJobID() string {
	return uuid.New().String()[:8]
}

// Create inserts a new record. It fails if the id is already present; a
// colliding submission must not silently overwrite a live job.
func (r *Registry) Create(job model.Job) error {
	if err := r.jobs.Add(job.ID, job, cache.DefaultExpiration); err != nil {
		return fmt.Errorf("job id %s already exists", job.ID)
	}
	return nil
}

// Update applies mutate to the record and stores it back, refreshing the
// TTL. It is a no-op when the id is absent or the record is terminal.
// The read-modify-write is not atomic across goroutines: that is fine
// because all updates to one record come from its single owning worker.
func (r *Registry) Update(id string, mutate func(*model.Job)) {
	v, ok := r.jobs.Get(id)
	if !ok {
		return
	}
	job := v.(model.Job)
	if job.IsTerminal() {
		return
	}
	mutate(&job)
	r.jobs.Set(id, job, cache.DefaultExpiration)
}

// Get returns a snapshot copy of the record.
func (r *Registry) Get(id string) (model.Job, bool) {
	v, ok := r.jobs.Get(id)
	if !ok {
		return model.Job{}, false
	}
	return v.(model.Job), true
}
