package handler

import (
	"net/http"

	"vidai-studio/app/model"

	"github.com/gin-gonic/gin"
)

// ModelsHandler serves the fixed model catalog.
type ModelsHandler struct{}

func NewModelsHandler() *ModelsHandler {
	return &ModelsHandler{}
}

func (h *ModelsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": model.AvailableModels})
}
