package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidai-studio/app/gemini"
	"vidai-studio/app/logger"
	"vidai-studio/app/media"
	"vidai-studio/app/model"
	"vidai-studio/app/storage"
	"vidai-studio/app/utils"
)

// defaultPollInterval paces the Files API state polling.
const defaultPollInterval = time.Second

// Fetcher is the media-download collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, url string, spec media.Spec) (media.Metadata, error)
}

// AIClient is the generative-AI collaborator: upload, poll, generate.
type AIClient interface {
	UploadFile(ctx context.Context, apiKey, path string) (*gemini.File, error)
	GetFile(ctx context.Context, apiKey, name string) (*gemini.File, error)
	GenerateContent(ctx context.Context, apiKey, modelID, prompt string, file *gemini.File) (string, error)
}

// GenerateRequest is one validated AI-generation submission.
type GenerateRequest struct {
	URL               string
	Lang              string
	Style             string
	ModelID           string
	APIKey            string
	CustomInstruction string
}

// GenerateService runs the audio-to-content pipeline: download best audio,
// upload it to Gemini, wait for processing, generate text, record history.
type GenerateService struct {
	registry      *Registry
	store         *storage.Store
	fetcher       Fetcher
	ai            AIClient
	log           *logger.Logger
	tempDir       string
	maxAudioBytes int64
	pollInterval  time.Duration
}

// NewGenerateService wires the AI pipeline against its collaborators.
func NewGenerateService(registry *Registry, store *storage.Store, fetcher Fetcher, ai AIClient, log *logger.Logger, tempDir string, maxAudioSizeMB int) *GenerateService {
	return &GenerateService{
		registry:      registry,
		store:         store,
		fetcher:       fetcher,
		ai:            ai,
		log:           log,
		tempDir:       tempDir,
		maxAudioBytes: int64(maxAudioSizeMB) * 1024 * 1024,
		pollInterval:  defaultPollInterval,
	}
}

// Submit allocates a job record and launches the worker goroutine. It
// returns the job id immediately; progress is observed by polling.
func (s *GenerateService) Submit(req GenerateRequest) (string, error) {
	id := NewJobID()
	job := model.Job{
		ID:       id,
		Status:   model.JobStatusRunning,
		Step:     model.StepQueued,
		Message:  "Starting…",
		URL:      req.URL,
		Platform: utils.DetectPlatform(req.URL),
	}
	if err := s.registry.Create(job); err != nil {
		return "", err
	}

	go s.run(id, req)
	s.log.Infof("job %s started for %s", id, truncate(req.URL, 60))
	return id, nil
}

// run drives one job through downloading, uploading, processing, generating
// and done. Every failure ends in a terminal error record; nothing escapes
// the goroutine.
func (s *GenerateService) run(jobID string, req GenerateRequest) {
	ctx := context.Background()

	modelID := req.ModelID
	if !model.IsKnownModel(modelID) {
		modelID = model.DefaultModelID
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("[%s] processing panicked: %v", jobID, r)
			s.fail(jobID, gemini.ParseAPIError(fmt.Errorf("%v", r), modelID))
		}
	}()

	audioPath := filepath.Join(s.tempDir, fmt.Sprintf("audio_%s.mp3", jobID))
	defer func() {
		if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warnf("could not remove temp file %s: %v", audioPath, err)
		}
	}()

	// Step 1 — download best audio as mp3.
	s.setStep(jobID, model.StepDownloading, 10, "Downloading audio from video...")
	s.log.Infof("[%s] downloading %s", jobID, truncate(req.URL, 60))

	outBase := strings.TrimSuffix(audioPath, ".mp3")
	meta, fetchErr := s.fetcher.Fetch(ctx, req.URL, media.AudioSpec(outBase, "128K"))

	info, statErr := os.Stat(audioPath)
	if statErr != nil {
		if fetchErr != nil {
			s.log.Warnf("[%s] audio fetch failed: %v", jobID, fetchErr)
		}
		s.fail(jobID, "Could not download audio. Check if the video is public.")
		return
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)
	if info.Size() > s.maxAudioBytes {
		s.fail(jobID, fmt.Sprintf("Audio too large (%.1f MB). Max %d MB.", sizeMB, s.maxAudioBytes/(1024*1024)))
		return
	}

	// Step 2 — upload to Gemini and wait until it is processed.
	s.setStep(jobID, model.StepUploading, 30, "Uploading audio to AI engine...")
	s.log.Infof("[%s] uploading %.1f MB", jobID, sizeMB)

	uploaded, err := s.ai.UploadFile(ctx, req.APIKey, audioPath)
	if err != nil {
		s.fail(jobID, gemini.ParseAPIError(err, modelID))
		return
	}

	s.setStep(jobID, model.StepProcessing, 50, "AI is analyzing the audio...")
	for uploaded.State == gemini.FileStateProcessing {
		time.Sleep(s.pollInterval)
		uploaded, err = s.ai.GetFile(ctx, req.APIKey, uploaded.Name)
		if err != nil {
			s.fail(jobID, gemini.ParseAPIError(err, modelID))
			return
		}
	}
	if uploaded.State == gemini.FileStateFailed {
		s.fail(jobID, "AI failed to process the audio file.")
		return
	}

	// Step 3 — generate content, with a single fallback retry when the
	// selected model does not exist.
	s.setStep(jobID, model.StepGenerating, 70, "Generating content with AI...")
	s.log.Infof("[%s] generating (%s, %s, %s)", jobID, modelID, req.Style, req.Lang)

	prompt := buildPrompt(req.Style, req.Lang, req.CustomInstruction)

	modelUsed := modelID
	text, err := s.ai.GenerateContent(ctx, req.APIKey, modelID, prompt, uploaded)
	if err != nil {
		if !gemini.IsNotFound(err) {
			s.fail(jobID, gemini.ParseAPIError(err, modelID))
			return
		}
		s.log.Warnf("[%s] model %s not found, falling back to %s", jobID, modelID, model.FallbackModelID)
		s.registry.Update(jobID, func(j *model.Job) {
			j.Message = "Model unavailable, trying fallback (Gemini 1.0 Pro)..."
		})
		text, err = s.ai.GenerateContent(ctx, req.APIKey, model.FallbackModelID, prompt, uploaded)
		if err != nil {
			s.fail(jobID, gemini.ParseAPIError(err, modelID))
			return
		}
		modelUsed = model.FallbackModelID + " (fallback)"
	}

	// Step 4 — done.
	wordCount := len(strings.Fields(text))
	s.registry.Update(jobID, func(j *model.Job) {
		j.Status = model.JobStatusDone
		j.Step = model.StepDone
		j.Progress = 100
		j.Message = "Content generated successfully!"
		j.Result = &text
		j.VideoTitle = &meta.Title
	})
	s.log.Infof("[%s] done, %d words", jobID, wordCount)

	entry := model.HistoryEntry{
		ID:         jobID,
		URL:        req.URL,
		Platform:   utils.DetectPlatform(req.URL),
		VideoTitle: meta.Title,
		Model:      modelUsed,
		Lang:       req.Lang,
		Style:      req.Style,
		Result:     text,
		WordCount:  wordCount,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if err := s.store.AppendHistory(entry); err != nil {
		s.log.Errorf("[%s] failed to append history: %v", jobID, err)
	}
}

// setStep advances the job to a new step with its progress and message.
func (s *GenerateService) setStep(jobID, step string, progress int, message string) {
	s.registry.Update(jobID, func(j *model.Job) {
		j.Step = step
		j.Progress = progress
		j.Message = message
	})
}

// fail moves the job to its terminal error state.
func (s *GenerateService) fail(jobID, message string) {
	s.registry.Update(jobID, func(j *model.Job) {
		j.Status = model.JobStatusError
		j.Step = model.StepFailed
		j.Progress = 0
		j.Error = &message
	})
}

// buildPrompt combines the fixed editor instruction template with the
// requested style and language, plus any user instruction verbatim.
func buildPrompt(style, lang, customInstruction string) string {
	prompt := fmt.Sprintf(
		"Role: Expert Content Editor and Writer.\n"+
			"Task: Analyze the audio carefully and create a '%s'.\n"+
			"Language: Output strictly in %s.\n"+
			"Style Guide:\n"+
			"- Use clean, professional formatting with Markdown.\n"+
			"- Use bold headers (##) for sections.\n"+
			"- Use bullet points for key takeaways.\n"+
			"- Write in a natural, professional tone.\n"+
			"- If the language is Bengali, use natural Bengali phrasing.",
		style, lang)

	if trimmed := strings.TrimSpace(customInstruction); trimmed != "" {
		prompt += "\n\nAdditional User Instructions:\n" + trimmed
	}
	return prompt
}

// truncate caps s at n bytes for log lines and stored messages.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
