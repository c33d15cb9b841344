package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/api"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/provider"
	"github.com/pageza/mealplanner/backend/internal/router"
	"github.com/pageza/mealplanner/backend/internal/service"
)

const providerCacheTTL = 15 * time.Minute

// Server wires the services, handlers and HTTP plumbing together.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// New builds a fully wired server. redisClient may be nil; the server then
// runs without provider caching and without plan-generation rate limiting.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	catalog := service.NewCatalogService(db)
	assignments := service.NewAssignmentService(db)
	preferences := service.NewPreferencesService(db)

	providers := buildProviders(cfg, redisClient)
	selector := service.NewMealSelector(catalog, assignments, preferences, providers, service.DefaultSelectorConfig())
	generator := service.NewPlanGenerator(selector, assignments)

	var images *service.ImageService
	if s3cfg, err := config.NewS3Config(context.Background()); err == nil {
		images = service.NewImageService(s3cfg)
	} else {
		log.Printf("image storage disabled: %v", err)
	}

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewPlanGenerationRateLimiter(redisClient)
	}

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewMealHandler(catalog, images),
		api.NewPlanHandler(selector, assignments, generator),
		api.NewPreferencesHandler(preferences),
		authService,
		limiter,
	)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{cfg: cfg, router: engine}
}

// buildProviders assembles the external provider chain in priority order,
// skipping providers without credentials.
func buildProviders(cfg *config.Config, redisClient *redis.Client) []provider.Provider {
	var providers []provider.Provider
	if cfg.EdamamAppID != "" && cfg.EdamamAppKey != "" {
		providers = append(providers, provider.NewEdamamProvider())
	}
	if cfg.SpoonacularAPIKey != "" {
		providers = append(providers, provider.NewSpoonacularProvider())
	}
	if redisClient == nil {
		return providers
	}

	cached := make([]provider.Provider, 0, len(providers))
	for _, p := range providers {
		cached = append(cached, provider.NewCachedProvider(p, redisClient, providerCacheTTL))
	}
	return cached
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
