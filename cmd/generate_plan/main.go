package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/database"
	"github.com/pageza/mealplanner/backend/internal/provider"
	"github.com/pageza/mealplanner/backend/internal/service"
)

const providerCacheTTL = 15 * time.Minute

func main() {
	year := flag.Int("year", time.Now().Year(), "plan year to generate")
	user := flag.String("user", "", "user ID for a personalized plan (defaults to the shared global plan)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var owner *uuid.UUID
	if *user != "" {
		id, err := uuid.Parse(*user)
		if err != nil {
			log.Fatalf("Invalid user ID: %v", err)
		}
		owner = &id
	}

	var providers []provider.Provider
	if cfg.EdamamAppID != "" && cfg.EdamamAppKey != "" {
		providers = append(providers, provider.NewEdamamProvider())
	}
	if cfg.SpoonacularAPIKey != "" {
		providers = append(providers, provider.NewSpoonacularProvider())
	}
	if redisClient, err := database.NewRedisClient(cfg); err == nil {
		for i, p := range providers {
			providers[i] = provider.NewCachedProvider(p, redisClient, providerCacheTTL)
		}
	} else {
		log.Printf("Redis unavailable, providers run uncached: %v", err)
	}

	catalog := service.NewCatalogService(db.DB())
	assignments := service.NewAssignmentService(db.DB())
	preferences := service.NewPreferencesService(db.DB())
	selector := service.NewMealSelector(catalog, assignments, preferences, providers, service.DefaultSelectorConfig())
	generator := service.NewPlanGenerator(selector, assignments)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("Generating plan for year %d", *year)
	report, err := generator.GenerateYear(ctx, *year, owner)
	if err != nil {
		log.Fatalf("Plan generation failed: %v", err)
	}

	log.Printf("Filled %d of %d slots (%d gaps)", report.FilledSlots, report.TotalSlots, len(report.Gaps))
	for _, gap := range report.Gaps {
		log.Printf("  gap: %s %s", gap.Date.Format("2006-01-02"), gap.Slot)
	}
}
