package handler

import (
	"net/http"
	"os"
	"strings"

	"vidai-studio/app/logger"
	"vidai-studio/app/model"
	"vidai-studio/app/service"
	"vidai-studio/app/utils"

	"github.com/gin-gonic/gin"
)

// DownloadHandler accepts plain download submissions and serves finished
// files.
type DownloadHandler struct {
	svc      *service.DownloadService
	registry *service.Registry
	log      *logger.Logger
}

func NewDownloadHandler(svc *service.DownloadService, registry *service.Registry, log *logger.Logger) *DownloadHandler {
	return &DownloadHandler{svc: svc, registry: registry, log: log}
}

type downloadBody struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Start validates the request and launches a download job.
func (h *DownloadHandler) Start(c *gin.Context) {
	var body downloadBody
	if err := c.ShouldBindJSON(&body); err != nil {
		failJSON(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	url := strings.TrimSpace(body.URL)
	format := body.Format
	if format == "" {
		format = service.FormatVideo
	}

	if url == "" {
		failJSON(c, http.StatusBadRequest, "URL is required.")
		return
	}
	if !utils.ValidateURL(url) {
		failJSON(c, http.StatusBadRequest, "Invalid URL format.")
		return
	}
	if format != service.FormatVideo && format != service.FormatAudio {
		failJSON(c, http.StatusBadRequest, "Format must be 'video' or 'audio'.")
		return
	}

	jobID, err := h.svc.Submit(url, format)
	if err != nil {
		h.log.Errorf("failed to start download job: %v", err)
		failJSON(c, http.StatusInternalServerError, "Could not start the job. Try again.")
		return
	}

	okJSON(c, gin.H{"job_id": jobID})
}

// ServeFile streams a completed download as an attachment. The file may
// have been swept in the meantime, in which case the client is told it
// expired.
func (h *DownloadHandler) ServeFile(c *gin.Context) {
	job, ok := h.registry.Get(c.Param("job_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found."})
		return
	}
	if job.Status != model.JobStatusDone || job.DownloadPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File not ready."})
		return
	}
	if _, err := os.Stat(job.DownloadPath); err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "File expired. Please download again."})
		return
	}

	name := "download"
	if job.DownloadFilename != nil {
		name = *job.DownloadFilename
	}
	c.FileAttachment(job.DownloadPath, name)
}
