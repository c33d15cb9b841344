package provider

import (
	"context"
	"errors"

	"github.com/pageza/mealplanner/backend/internal/models"
)

// ErrUnavailable marks a provider failure (transport error, timeout or
// non-2xx response). Callers treat it as "try the next provider", never as a
// hard failure of the selection itself.
var ErrUnavailable = errors.New("provider unavailable")

// Provider is the uniform contract over one external recipe source. Search
// returns an empty slice when the provider has no results; an error means the
// provider itself failed (transport, timeout, non-2xx) and the caller should
// fall back to the next provider in priority order.
type Provider interface {
	Name() string
	Search(ctx context.Context, category models.MealSlot, dietType string, maxResults int) ([]CandidateMeal, error)
}

// CandidateMeal is a meal fetched from an external provider, not yet cached in
// the catalog. SourceProvider and ExternalID are always set.
type CandidateMeal struct {
	SourceProvider  string   `json:"source_provider"`
	ExternalID      string   `json:"external_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        models.MealSlot `json:"category"`
	DietType        string   `json:"diet_type"`
	CuisineType     string   `json:"cuisine_type"`
	DifficultyLevel string   `json:"difficulty_level"`
	PrepTime        int      `json:"prep_time"`
	CookTime        int      `json:"cook_time"`
	Servings        int      `json:"servings"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	Calories        *int     `json:"calories,omitempty"`
	Protein         *float64 `json:"protein,omitempty"`
	Carbs           *float64 `json:"carbs,omitempty"`
	Fat             *float64 `json:"fat,omitempty"`
	Fiber           *float64 `json:"fiber,omitempty"`
	Sugar           *float64 `json:"sugar,omitempty"`
	Sodium          *float64 `json:"sodium,omitempty"`
	ImageURL        string   `json:"image_url"`
}

// slotQueries seeds the free-text search per slot, mirroring how the catalog
// is organized rather than trusting each provider's own categorization.
var slotQueries = map[models.MealSlot]string{
	models.SlotBreakfast: "breakfast eggs oatmeal toast",
	models.SlotLunch:     "lunch sandwich salad soup",
	models.SlotDinner:    "dinner chicken fish pasta rice",
	models.SlotSnack:     "snack nuts fruit yogurt",
}
