// README: Entry point; loads config, wires services and serves the HTTP API until SIGINT/SIGTERM.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/ai"
	"wayfarer/internal/config"
	httptransport "wayfarer/internal/http"
	"wayfarer/internal/infra"
	"wayfarer/internal/maps"
	"wayfarer/internal/modules/aiusage"
	"wayfarer/internal/modules/history"
	"wayfarer/internal/modules/location"
	"wayfarer/internal/service"
	"wayfarer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.SetDebug(cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, app)
	if err != nil {
		log.Fatalf("firebase auth: %v", err)
	}
	fs, err := infra.NewFirestore(ctx, app)
	if err != nil {
		log.Fatalf("firestore: %v", err)
	}
	defer fs.Close()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()
	if cfg.DB.AutoMigrate {
		dir, err := infra.FindMigrations()
		if err != nil {
			log.Fatalf("migrations: %v", err)
		}
		if err := infra.ApplyMigrations(ctx, dbPool, dir); err != nil {
			log.Fatalf("migrations: %v", err)
		}
	}

	places, err := maps.NewPlacesService(cfg.Maps.APIKey, cfg.Maps.Language)
	if err != nil {
		log.Fatalf("maps client: %v", err)
	}
	var geocoder maps.Geocoder = places
	if rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr); err != nil {
		logger.Warn("geocode cache disabled: %v", err)
	} else {
		defer rdb.Close()
		geocoder = maps.NewCachedGeocoder(places, rdb, cfg.Maps.GeocodeTTL)
	}

	locationSvc := location.NewService(location.NewFirestoreStore(fs))
	historySvc := history.NewService(history.NewStore(dbPool))
	usageSvc := aiusage.NewService(aiusage.NewStore(dbPool))

	var provider ai.NarrativeProvider
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini: %v", err)
		}
		defer gemini.Close()
		provider = gemini
	} else {
		logger.Info("GEMINI_API_KEY not set; trip narratives disabled")
	}
	narrator := service.NewTripNarrator(locationSvc, provider, usageSvc, cfg.Maps.Timeout)

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.RouterDeps{
		Location:   locationSvc,
		Geocoder:   geocoder,
		History:    historySvc,
		Narrator:   narrator,
		AIUsage:    usageSvc,
		Verifier:   verifier,
		MapOptions: cfg.Map.Options(cfg.Maps.Timeout),
	})
	if err := server.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
