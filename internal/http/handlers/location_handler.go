// README: Journal map handlers; renders a pass on a headless surface and reports stats.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/http/middleware"
	"wayfarer/internal/mapview"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/modules/stats"
	"wayfarer/internal/types"
)

type LocationHandler struct {
	location *location.Service
	opts     mapview.Options
}

// NewLocationHandler renders with opts. Camera animation delays are dropped
// since the response is taken after the camera settles.
func NewLocationHandler(svc *location.Service, opts mapview.Options) *LocationHandler {
	opts.SettleDelay = 0
	opts.ZoomStepInterval = 0
	return &LocationHandler{location: svc, opts: opts}
}

type mapResponse struct {
	Scene mapview.Scene `json:"scene"`
	Pass  mapview.Pass  `json:"pass"`
	Stats stats.Summary `json:"stats"`
}

// Map handles GET /api/map?trip=&lat=&lng=&cluster=.
func (h *LocationHandler) Map(c *gin.Context) {
	in := mapview.Input{
		SelectedTrip: types.ID(c.Query("trip")),
		Clustering:   true,
	}
	if raw := c.Query("cluster"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid cluster flag")
			return
		}
		in.Clustering = on
	}
	pt, ok, err := queryPoint(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if ok {
		in.Current = &pt
	}

	ctx := c.Request.Context()
	data, err := h.location.MapData(ctx, middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	in.Locations = data.Locations
	in.Trips = data.Trips

	rec := mapview.NewRecorder()
	m := mapview.NewMap(rec, h.opts.Timeout)
	defer m.Dispose()
	if err := m.Init(ctx, nil); err != nil {
		writeServiceError(c, err)
		return
	}
	r := mapview.NewRenderer(m, h.opts, mapview.Callbacks{})
	pass, err := r.Rebuild(ctx, in)
	if err != nil {
		r.Close()
		writeServiceError(c, err)
		return
	}
	r.Viewport().Wait()
	scene := rec.Scene()
	r.Close()

	writeJSON(c, http.StatusOK, mapResponse{
		Scene: scene,
		Pass:  pass,
		Stats: stats.Aggregate(data.Trips, data.Locations),
	})
}

// Stats handles GET /api/stats.
func (h *LocationHandler) Stats(c *gin.Context) {
	data, err := h.location.MapData(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, stats.Aggregate(data.Trips, data.Locations))
}

type addPinReq struct {
	Name string        `json:"name"`
	Lat  float64       `json:"lat"`
	Lng  float64       `json:"lng"`
	Kind location.Kind `json:"kind"`
}

// AddCustomPin handles POST /api/locations/custom.
func (h *LocationHandler) AddCustomPin(c *gin.Context) {
	var req addPinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	pin, err := h.location.AddCustomPin(c.Request.Context(), middleware.CallerUID(c), location.AddPinCommand{
		Name: req.Name,
		Lat:  req.Lat,
		Lng:  req.Lng,
		Kind: req.Kind,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, pin)
}
