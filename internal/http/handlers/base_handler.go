// README: Base handler utilities (JSON helpers, error mapping, query parsing).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/maps"
	"wayfarer/internal/mapview"
	"wayfarer/internal/modules/aiusage"
	"wayfarer/internal/modules/history"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
	"wayfarer/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps domain sentinels to status codes. Anything unknown is
// logged and reported as a 500 without leaking the cause.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, location.ErrBadRequest), errors.Is(err, history.ErrBadRequest), errors.Is(err, maps.ErrEmptyQuery):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, location.ErrNotFound), errors.Is(err, maps.ErrNoResults):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, aiusage.ErrInsufficientTokens), errors.Is(err, mapview.ErrQuotaExceeded):
		writeError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrNarrativeDisabled):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, mapview.ErrRebuildInProgress):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "upstream timeout")
	default:
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// queryPoint reads lat/lng query parameters. ok is false when both are absent;
// err is set when they are present but unusable.
func queryPoint(c *gin.Context) (pt types.Point, ok bool, err error) {
	rawLat, rawLng := c.Query("lat"), c.Query("lng")
	if rawLat == "" && rawLng == "" {
		return types.Point{}, false, nil
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return types.Point{}, false, errors.New("invalid lat")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return types.Point{}, false, errors.New("invalid lng")
	}
	pt = types.Point{Lat: lat, Lng: lng}
	if !pt.Valid() {
		return types.Point{}, false, errors.New("coordinates out of range")
	}
	return pt, true, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
