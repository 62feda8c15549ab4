package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vidai-studio/app/logger"
	"vidai-studio/app/media"
	"vidai-studio/app/model"
	"vidai-studio/app/utils"
)

// Download format selectors accepted by the façade.
const (
	FormatVideo = "video"
	FormatAudio = "audio"
)

// DownloadService runs the plain media-download pipeline: fetch the file,
// discover what yt-dlp actually produced, and leave it on disk for the
// retrieval endpoint.
type DownloadService struct {
	registry *Registry
	fetcher  Fetcher
	log      *logger.Logger
	tempDir  string
}

// NewDownloadService wires the download pipeline.
func NewDownloadService(registry *Registry, fetcher Fetcher, log *logger.Logger, tempDir string) *DownloadService {
	return &DownloadService{
		registry: registry,
		fetcher:  fetcher,
		log:      log,
		tempDir:  tempDir,
	}
}

// Submit allocates a job record and launches the worker goroutine.
// The format must already be validated; anything but video or audio is
// rejected before a job is created.
func (s *DownloadService) Submit(url, format string) (string, error) {
	if format != FormatVideo && format != FormatAudio {
		return "", fmt.Errorf("format must be %q or %q", FormatVideo, FormatAudio)
	}

	id := NewJobID()
	job := model.Job{
		ID:       id,
		Status:   model.JobStatusRunning,
		Step:     model.StepQueued,
		Message:  "Starting download…",
		URL:      url,
		Platform: utils.DetectPlatform(url),
	}
	if err := s.registry.Create(job); err != nil {
		return "", err
	}

	go s.run(id, url, format)
	s.log.Infof("download job %s started (%s) for %s", id, format, truncate(url, 60))
	return id, nil
}

func (s *DownloadService) run(jobID, url, format string) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("[%s] download panicked: %v", jobID, r)
			s.fail(jobID, "Download failed: "+truncate(fmt.Sprintf("%v", r), 150))
		}
	}()

	s.setStep(jobID, model.StepDownloading, 20, fmt.Sprintf("Downloading %s from video...", format))
	s.log.Infof("[%s] downloading %s as %s", jobID, truncate(url, 60), format)

	prefix := "dl_" + jobID

	var meta media.Metadata
	var fetchErr error
	if format == FormatAudio {
		outBase := filepath.Join(s.tempDir, prefix)
		meta, fetchErr = s.fetcher.Fetch(ctx, url, media.AudioSpec(outBase, "192K"))
	} else {
		template := filepath.Join(s.tempDir, prefix+".%(ext)s")
		meta, fetchErr = s.fetcher.Fetch(ctx, url, media.VideoSpec(template))
	}

	dlPath := s.discoverOutput(prefix)
	if dlPath == "" {
		if fetchErr != nil {
			s.log.Warnf("[%s] media fetch failed: %v", jobID, fetchErr)
		}
		s.fail(jobID, "Download failed. The video may be private or unavailable.")
		return
	}

	info, err := os.Stat(dlPath)
	if err != nil {
		s.fail(jobID, "Download failed. The video may be private or unavailable.")
		return
	}

	sizeMB := math.Round(float64(info.Size())/(1024*1024)*10) / 10
	ext := strings.TrimPrefix(filepath.Ext(dlPath), ".")
	filename := utils.SafeFilename(meta.Title) + "." + ext

	s.registry.Update(jobID, func(j *model.Job) {
		j.Status = model.JobStatusDone
		j.Step = model.StepDone
		j.Progress = 100
		j.Message = fmt.Sprintf("%s ready to download (%.1f MB)", capitalize(format), sizeMB)
		j.VideoTitle = &meta.Title
		j.DownloadPath = dlPath
		j.DownloadFilename = &filename
		j.DownloadSizeMB = &sizeMB
	})
	s.log.Infof("[%s] download ready: %s (%.1f MB)", jobID, filename, sizeMB)
}

// discoverOutput finds the file yt-dlp produced for the given unique
// prefix. The video variant's extension is only known after the merge, so
// the temp dir is scanned; with more than one candidate the
// lexicographically smallest wins as a defined tie-break.
func (s *DownloadService) discoverOutput(prefix string) string {
	matches, err := filepath.Glob(filepath.Join(s.tempDir, prefix+".*"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

func (s *DownloadService) setStep(jobID, step string, progress int, message string) {
	s.registry.Update(jobID, func(j *model.Job) {
		j.Step = step
		j.Progress = progress
		j.Message = message
	})
}

func (s *DownloadService) fail(jobID, message string) {
	s.registry.Update(jobID, func(j *model.Job) {
		j.Status = model.JobStatusError
		j.Step = model.StepFailed
		j.Progress = 0
		j.Error = &message
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
