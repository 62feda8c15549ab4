package model

// Job statuses. A job is mutable only while running; done and error are
// terminal and the record is frozen once either is reached.
const (
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusError   = "error"
)

// Pipeline steps, in the order the workers move through them.
const (
	StepQueued      = "queued"
	StepDownloading = "downloading"
	StepUploading   = "uploading"
	StepProcessing  = "processing"
	StepGenerating  = "generating"
	StepDone        = "done"
	StepFailed      = "failed"
)

// Job is the polling snapshot of one background task.
type Job struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Step     string `json:"step"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	URL      string `json:"url"`
	Platform string `json:"platform"`

	Result     *string `json:"result"`
	Error      *string `json:"error"`
	VideoTitle *string `json:"video_title"`

	// Download pipeline only. The server-local path never leaves the process.
	DownloadPath     string   `json:"-"`
	DownloadFilename *string  `json:"download_filename,omitempty"`
	DownloadSizeMB   *float64 `json:"download_size_mb,omitempty"`
}

// IsTerminal reports whether the record may no longer change.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusError
}
