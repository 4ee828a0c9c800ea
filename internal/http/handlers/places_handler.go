// README: Places handlers (autocomplete, place resolution, reverse geocoding) over the cached geocoder.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wayfarer/internal/http/middleware"
	"wayfarer/internal/maps"
	"wayfarer/internal/modules/history"
	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

type PlacesHandler struct {
	geocoder maps.Geocoder
	history  *history.Service
	timeout  time.Duration
}

func NewPlacesHandler(g maps.Geocoder, hist *history.Service, timeout time.Duration) *PlacesHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PlacesHandler{geocoder: g, history: hist, timeout: timeout}
}

// sessionFrom reads the client's autocomplete session token. A missing or
// malformed token gets a fresh one so billing still groups the request.
func sessionFrom(c *gin.Context) maps.SessionToken {
	if u, err := uuid.Parse(c.Query("session")); err == nil {
		return maps.SessionToken(u)
	}
	return maps.NewSessionToken()
}

// Autocomplete handles GET /api/places/autocomplete?q=&lat=&lng=&session=.
func (h *PlacesHandler) Autocomplete(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		writeJSON(c, http.StatusOK, []maps.Prediction{})
		return
	}
	bias, ok, err := queryPoint(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var biasPtr *types.Point
	if ok {
		biasPtr = &bias
	}
	preds, err := h.geocoder.Autocomplete(ctx, q, sessionFrom(c), biasPtr)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if preds == nil {
		preds = []maps.Prediction{}
	}
	writeJSON(c, http.StatusOK, preds)
}

// Place handles GET /api/places/:placeID?session= and records the pick in
// the caller's search history.
func (h *PlacesHandler) Place(c *gin.Context) {
	placeID := strings.TrimSpace(c.Param("placeID"))
	if placeID == "" {
		writeError(c, http.StatusBadRequest, "missing place id")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	place, err := h.geocoder.ResolvePlace(ctx, placeID, sessionFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if h.history != nil {
		if _, err := h.history.Record(ctx, middleware.CallerUID(c), place); err != nil {
			logger.Warn("search history: %v", err)
		}
	}
	writeJSON(c, http.StatusOK, place)
}

// Reverse handles GET /api/places/reverse?lat=&lng=.
func (h *PlacesHandler) Reverse(c *gin.Context) {
	pt, ok, err := queryPoint(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(c, http.StatusBadRequest, "missing lat or lng")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	place, err := h.geocoder.ReverseGeocode(ctx, pt)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, place)
}
