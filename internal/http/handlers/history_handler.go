// README: Search history handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/http/middleware"
	"wayfarer/internal/modules/history"
)

type HistoryHandler struct {
	history *history.Service
}

func NewHistoryHandler(svc *history.Service) *HistoryHandler {
	return &HistoryHandler{history: svc}
}

// List handles GET /api/search/history?limit=.
func (h *HistoryHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid limit")
		return
	}
	items, err := h.history.Recent(c.Request.Context(), middleware.CallerUID(c), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if items == nil {
		items = []history.Item{}
	}
	writeJSON(c, http.StatusOK, items)
}

// Clear handles DELETE /api/search/history.
func (h *HistoryHandler) Clear(c *gin.Context) {
	n, err := h.history.Clear(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"deleted": n})
}
