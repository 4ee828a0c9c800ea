// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/http/handlers"
	"wayfarer/internal/http/middleware"
	"wayfarer/internal/infra"
	"wayfarer/internal/maps"
	"wayfarer/internal/mapview"
	"wayfarer/internal/modules/aiusage"
	"wayfarer/internal/modules/history"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/service"
)

type RouterDeps struct {
	Location   *location.Service
	Geocoder   maps.Geocoder
	History    *history.Service
	Narrator   *service.TripNarrator
	AIUsage    *aiusage.Service
	Verifier   infra.TokenVerifier
	MapOptions mapview.Options
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Verifier))

	locationHandler := handlers.NewLocationHandler(deps.Location, deps.MapOptions)
	api.GET("/map", locationHandler.Map)
	api.GET("/stats", locationHandler.Stats)
	api.POST("/locations/custom", locationHandler.AddCustomPin)

	placesHandler := handlers.NewPlacesHandler(deps.Geocoder, deps.History, deps.MapOptions.Timeout)
	api.GET("/places/autocomplete", placesHandler.Autocomplete)
	api.GET("/places/reverse", placesHandler.Reverse)
	api.GET("/places/:placeID", placesHandler.Place)

	historyHandler := handlers.NewHistoryHandler(deps.History)
	api.GET("/search/history", historyHandler.List)
	api.DELETE("/search/history", historyHandler.Clear)

	aiHandler := handlers.NewAIHandler(deps.Narrator, deps.AIUsage)
	api.POST("/trips/:id/narrative", aiHandler.Narrative)
	api.GET("/ai/usage", aiHandler.Usage)

	return r
}
