package handler

import (
	"net/http"
	"strings"

	"vidai-studio/app/storage"

	"github.com/gin-gonic/gin"
)

// Defaults returned before the user has saved anything.
const (
	defaultModel = "gemini-2.0-flash"
	defaultLang  = "Bengali"
	defaultStyle = "Summary"
)

// SettingsHandler serves the user-editable configuration.
type SettingsHandler struct {
	store *storage.Store
}

func NewSettingsHandler(store *storage.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Get returns the stored settings with defaults filled in.
func (h *SettingsHandler) Get(c *gin.Context) {
	cfg := h.store.LoadSettings()
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaultModel
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = defaultLang
	}
	if cfg.DefaultStyle == "" {
		cfg.DefaultStyle = defaultStyle
	}
	c.JSON(http.StatusOK, gin.H{
		"api_key":       cfg.APIKey,
		"default_model": cfg.DefaultModel,
		"default_lang":  cfg.DefaultLang,
		"default_style": cfg.DefaultStyle,
	})
}

type settingsBody struct {
	APIKey       *string `json:"api_key"`
	DefaultModel *string `json:"default_model"`
	DefaultLang  *string `json:"default_lang"`
	DefaultStyle *string `json:"default_style"`
}

// Update patches the stored settings. An explicitly empty API key is
// rejected; absent fields stay untouched.
func (h *SettingsHandler) Update(c *gin.Context) {
	var body settingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		failJSON(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if body.APIKey != nil && strings.TrimSpace(*body.APIKey) == "" {
		failJSON(c, http.StatusBadRequest, "API Key cannot be empty.")
		return
	}

	err := h.store.UpdateSettings(func(s *storage.Settings) {
		if body.APIKey != nil {
			s.APIKey = *body.APIKey
		}
		if body.DefaultModel != nil {
			s.DefaultModel = *body.DefaultModel
		}
		if body.DefaultLang != nil {
			s.DefaultLang = *body.DefaultLang
		}
		if body.DefaultStyle != nil {
			s.DefaultStyle = *body.DefaultStyle
		}
	})
	if err != nil {
		failJSON(c, http.StatusInternalServerError, "Could not save settings.")
		return
	}
	okJSON(c, nil)
}
