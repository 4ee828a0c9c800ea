// README: Trip narrative handler (quota-guarded Gemini narrative).
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/http/middleware"
	"wayfarer/internal/modules/aiusage"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

type AIHandler struct {
	narrator *service.TripNarrator
	usage    *aiusage.Service
}

// NewAIHandler wires the narrator. usage may be nil, in which case the
// remaining-allowance endpoint answers 503.
func NewAIHandler(narrator *service.TripNarrator, usage *aiusage.Service) *AIHandler {
	return &AIHandler{narrator: narrator, usage: usage}
}

// isValidID accepts Firestore document ids and uuids.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

// Narrative handles POST /api/trips/:id/narrative.
func (h *AIHandler) Narrative(c *gin.Context) {
	tripID := strings.TrimSpace(c.Param("id"))
	if !isValidID(tripID) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	narrative, err := h.narrator.Narrate(c.Request.Context(), middleware.CallerUID(c), types.ID(tripID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, narrative)
}

// Usage handles GET /api/ai/usage.
func (h *AIHandler) Usage(c *gin.Context) {
	if h.usage == nil {
		writeError(c, http.StatusServiceUnavailable, service.ErrNarrativeDisabled.Error())
		return
	}
	n, err := h.usage.Remaining(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"remaining": n})
}
