package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"area-access-service/internal/config"
	hrest "area-access-service/internal/handler/rest"
	"area-access-service/internal/repository"
	"area-access-service/internal/router"
	"area-access-service/internal/service"
	"area-access-service/internal/usecase"
	"area-access-service/pkg/auth/jwtutil"
	"area-access-service/pkg/auth/middleware"
	"area-access-service/pkg/cache"
	"area-access-service/pkg/id"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewServer builds and returns the HTTP server
func NewServer(cfg config.AppConfig) *http.Server {
	// --- DB connection ---
	dbpool, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// --- Redis + cache ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	areaCache := cache.NewCache([]string{cfg.RedisAddr}, cfg.RedisPass, false)

	logger, _ := zap.NewProduction()

	// --- Auth ---
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	verifier := jwtutil.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience)
	auth := middleware.NewAuthMiddleware(verifier)

	// --- Init repos & usecases ---
	areaRepo := repository.NewAreaAccessRepo(dbpool)
	sf, err := id.NewSnowflake(17) // node ID for the area access service
	if err != nil {
		log.Fatalf("failed to init snowflake: %v", err)
	}

	areaUC := usecase.NewAreaAccessUsecase(areaRepo, sf, areaCache)
	areaHandler := hrest.NewAreaAccessHandler(areaUC, logger)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		seed := service.NewAreaSeedService(areaUC, areaRepo)
		if err := seed.SeedDefaults(ctx); err != nil {
			log.Printf("⚠️  failed to seed defaults on startup: %v", err)
		} else {
			log.Println("✅ defaults seeded successfully on startup")
		}
	}()

	// --- HTTP routes ---
	r := chi.NewRouter()
	router.SetupRoutes(r, areaHandler, auth, rdb)

	// --- HTTP server ---
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}
