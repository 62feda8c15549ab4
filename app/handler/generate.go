package handler

import (
	"net/http"
	"strings"

	"vidai-studio/app/logger"
	"vidai-studio/app/service"
	"vidai-studio/app/storage"
	"vidai-studio/app/utils"

	"github.com/gin-gonic/gin"
)

// GenerateHandler accepts AI-generation submissions and serves job status.
type GenerateHandler struct {
	svc      *service.GenerateService
	registry *service.Registry
	store    *storage.Store
	log      *logger.Logger
}

func NewGenerateHandler(svc *service.GenerateService, registry *service.Registry, store *storage.Store, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{svc: svc, registry: registry, store: store, log: log}
}

type generateBody struct {
	URL               string `json:"url"`
	Lang              string `json:"lang"`
	Style             string `json:"style"`
	Model             string `json:"model"`
	CustomInstruction string `json:"custom_instruction"`
}

// Generate validates the request, starts the AI pipeline and returns the
// job id. Validation failures never create a job.
func (h *GenerateHandler) Generate(c *gin.Context) {
	settings := h.store.LoadSettings()
	if settings.APIKey == "" {
		failJSON(c, http.StatusUnauthorized, "API Key not set. Open Settings.")
		return
	}

	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		failJSON(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	url := strings.TrimSpace(body.URL)
	if url == "" {
		failJSON(c, http.StatusBadRequest, "URL is required.")
		return
	}
	if !utils.ValidateURL(url) {
		failJSON(c, http.StatusBadRequest, "Invalid URL format.")
		return
	}

	lang := body.Lang
	if lang == "" {
		lang = defaultLang
	}
	style := body.Style
	if style == "" {
		style = defaultStyle
	}
	modelID := body.Model
	if modelID == "" {
		modelID = settings.DefaultModel
	}
	if modelID == "" {
		modelID = defaultModel
	}

	jobID, err := h.svc.Submit(service.GenerateRequest{
		URL:               url,
		Lang:              lang,
		Style:             style,
		ModelID:           modelID,
		APIKey:            settings.APIKey,
		CustomInstruction: body.CustomInstruction,
	})
	if err != nil {
		h.log.Errorf("failed to start generation job: %v", err)
		failJSON(c, http.StatusInternalServerError, "Could not start the job. Try again.")
		return
	}

	// Remember the user's last choices as the new defaults.
	if err := h.store.UpdateSettings(func(s *storage.Settings) {
		s.DefaultModel = modelID
		s.DefaultLang = lang
		s.DefaultStyle = style
	}); err != nil {
		h.log.Warnf("could not persist preferences: %v", err)
	}

	okJSON(c, gin.H{"job_id": jobID})
}

// Status returns the full current job record, or 404 for unknown ids.
func (h *GenerateHandler) Status(c *gin.Context) {
	job, ok := h.registry.Get(c.Param("job_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found."})
		return
	}
	c.JSON(http.StatusOK, job)
}
