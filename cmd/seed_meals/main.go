package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gorm.io/gorm/clause"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/database"
	"github.com/pageza/mealplanner/backend/internal/models"
)

// seedMeal mirrors the meal model minus server-assigned fields.
type seedMeal struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	DietType        string   `json:"diet_type"`
	CuisineType     string   `json:"cuisine_type"`
	DifficultyLevel string   `json:"difficulty_level"`
	PrepTime        int      `json:"prep_time"`
	CookTime        int      `json:"cook_time"`
	Servings        int      `json:"servings"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	Calories        *int     `json:"calories"`
	Protein         *float64 `json:"protein"`
	Carbs           *float64 `json:"carbs"`
	Fat             *float64 `json:"fat"`
}

func main() {
	file := flag.String("file", "seed/meals.json", "JSON file with meals to seed")
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

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	var seeds []seedMeal
	if err := json.Unmarshal(data, &seeds); err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}

	created := 0
	for _, seed := range seeds {
		slot, ok := models.ParseMealSlot(seed.Category)
		if !ok {
			log.Printf("Skipping %q: invalid category %q", seed.Name, seed.Category)
			continue
		}

		meal := models.Meal{
			Name:            seed.Name,
			Description:     seed.Description,
			Category:        slot,
			DietType:        seed.DietType,
			CuisineType:     seed.CuisineType,
			DifficultyLevel: seed.DifficultyLevel,
			PrepTime:        seed.PrepTime,
			CookTime:        seed.CookTime,
			Servings:        seed.Servings,
			Ingredients:     models.JSONBStringArray(seed.Ingredients),
			Instructions:    models.JSONBStringArray(seed.Instructions),
			Calories:        seed.Calories,
			Protein:         seed.Protein,
			Carbs:           seed.Carbs,
			Fat:             seed.Fat,
		}
		if meal.DietType == "" {
			meal.DietType = models.DietMixed
		}

		// Re-running the seeder must not duplicate meals.
		result := db.DB().
			Where("name = ? AND category = ? AND source_provider IS NULL", meal.Name, meal.Category).
			Clauses(clause.OnConflict{DoNothing: true}).
			FirstOrCreate(&meal)
		if result.Error != nil {
			log.Printf("Failed to seed %q: %v", meal.Name, result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			created++
		}
	}

	log.Printf("Seeded %d of %d meals", created, len(seeds))
}
