package main

import (
	"context"
	"convoy-route-service/internal/adapters/cache"
	"convoy-route-service/internal/adapters/geometry"
	"convoy-route-service/internal/adapters/notify"
	"convoy-route-service/internal/adapters/repositories"
	"convoy-route-service/internal/api"
	"convoy-route-service/internal/config"
	"convoy-route-service/internal/infrasync"
	"convoy-route-service/internal/platform/db"
	"convoy-route-service/internal/services"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, the geometry provider) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	port := config.Get("PORT", "8080")

	database, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := repositories.InitSchema(database); err != nil {
		log.Fatal(err)
	}

	// Route geometry cache is optional; without Redis the provider simply
	// calls out on every request.
	var routeCache *cache.RedisRouteCache
	if redisAddr := config.Get("REDIS_ADDR", ""); redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		routeCache = cache.NewRedisRouteCache(client, config.GetDuration("ROUTE_CACHE_TTL", 6*time.Hour))
	}

	// An empty base URL runs the provider in degraded mode: direct-line
	// fallback routes only.
	geometryBaseURL := config.Get("GEOMETRY_BASE_URL", "")
	if geometryBaseURL == "" {
		log.Println("GEOMETRY_BASE_URL not set; serving direct-line fallback routes")
	}
	provider := geometry.NewORSGeometryProvider(os.Getenv("GEOMETRY_API_KEY"), geometryBaseURL, routeCache)

	vehicleRepo := repositories.NewPostgresVehicleRepository(database)
	infraStore := repositories.NewPostgresInfrastructureStore(database)
	missionStore := repositories.NewPostgresMissionStore(database)
	proposalRepo := repositories.NewPostgresProposalRepository(database)

	ctx := context.Background()

	index := services.NewSpatialIndex(infraStore)
	if err := index.Reload(ctx); err != nil {
		log.Printf("initial spatial index load failed (serving empty snapshot): %v", err)
	}

	matcher := services.NewObstacleMatcher(index, config.GetFloat("OBSTACLE_RADIUS_KM", services.DefaultObstacleRadiusKm))
	assembler := services.NewAssembler(provider, matcher, proposalRepo, vehicleRepo, missionStore)
	reevaluator := services.NewReevaluator(
		assembler, missionStore, proposalRepo, notify.NewLogNotifier(),
		config.GetFloat("REEVAL_RADIUS_KM", services.DefaultReevalRadiusKm),
	)

	// The periodic infrastructure sync runs on its own schedule, separate
	// from on-demand route requests.
	if feedURL := config.Get("INFRA_FEED_URL", ""); feedURL != "" {
		syncer := infrasync.NewSyncer(
			feedURL, infraStore, index, reevaluator,
			config.GetDuration("INFRA_SYNC_INTERVAL", 15*time.Minute),
		)
		go syncer.Run(ctx)
	}

	router := api.NewRouter(assembler, proposalRepo)

	// Write timeout is generous: cold-cache generation waits on the external
	// geometry provider for up to three variants.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
