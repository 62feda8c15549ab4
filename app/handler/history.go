package handler

import (
	"net/http"

	"vidai-studio/app/storage"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the persisted generation history.
type HistoryHandler struct {
	store *storage.Store
}

func NewHistoryHandler(store *storage.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// List returns all entries, most recent first.
func (h *HistoryHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.store.History()})
}

// Delete removes a single entry by id.
func (h *HistoryHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteHistory(c.Param("id")); err != nil {
		failJSON(c, http.StatusInternalServerError, "Could not update history.")
		return
	}
	okJSON(c, nil)
}

// Clear removes every entry.
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.store.ClearHistory(); err != nil {
		failJSON(c, http.StatusInternalServerError, "Could not clear history.")
		return
	}
	okJSON(c, nil)
}
