package service

import (
	"os"
	"path/filepath"
	"time"

	"vidai-studio/app/logger"

	"github.com/robfig/cron/v3"
)

// Janitor periodically removes stale files from the temp directory.
// Completed downloads are kept on disk for the retrieval endpoint; once
// their TTL passes they are swept and the client sees the file as expired.
type Janitor struct {
	cron    *cron.Cron
	tempDir string
	ttl     time.Duration
	log     *logger.Logger
}

// NewJanitor schedules a sweep of tempDir on the given cron schedule,
// removing download artifacts older than ttlHours.
func NewJanitor(tempDir string, ttlHours int, schedule string, log *logger.Logger) (*Janitor, error) {
	j := &Janitor{
		cron:    cron.New(),
		tempDir: tempDir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		log:     log,
	}
	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, err
	}
	return j, nil
}

// Start begins the schedule.
func (j *Janitor) Start() {
	j.cron.Start()
	j.log.Infof("temp file janitor started (ttl %s)", j.ttl)
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

// sweep removes audio_* and dl_* files whose modification time is older
// than the TTL.
func (j *Janitor) sweep() {
	cutoff := time.Now().Add(-j.ttl)
	for _, pattern := range []string{"audio_*", "dl_*"} {
		matches, err := filepath.Glob(filepath.Join(j.tempDir, pattern))
		if err != nil {
			continue
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil {
				j.log.Warnf("could not remove stale file %s: %v", path, err)
				continue
			}
			j.log.Infof("removed stale file %s", path)
		}
	}
}
