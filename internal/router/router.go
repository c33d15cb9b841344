package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pageza/mealplanner/backend/internal/api"
	"github.com/pageza/mealplanner/backend/internal/middleware"
)

// SetupRouter configures the application routes. rateLimiter guards the plan
// generation endpoint and may be nil when Redis is unavailable.
func SetupRouter(
	authHandler *api.AuthHandler,
	mealHandler *api.MealHandler,
	planHandler *api.PlanHandler,
	preferencesHandler *api.PreferencesHandler,
	tokenValidator middleware.TokenValidator,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(tokenValidator))

	mealHandler.RegisterRoutes(v1, protected)
	preferencesHandler.RegisterRoutes(protected)

	var generateGuards []gin.HandlerFunc
	if rateLimiter != nil {
		generateGuards = append(generateGuards, rateLimiter.RateLimitMiddleware())
	}
	planHandler.RegisterRoutes(protected, generateGuards...)

	return router
}
