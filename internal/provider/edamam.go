package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pageza/mealplanner/backend/internal/models"
)

const edamamRecipeURL = "https://api.edamam.com/api/recipes/v2"

// EdamamProvider searches the Edamam Recipe Search API.
type EdamamProvider struct {
	appID   string
	appKey  string
	baseURL string
	client  *http.Client
}

// NewEdamamProvider initializes the provider with credentials from the
// environment and a timed HTTP client.
func NewEdamamProvider() *EdamamProvider {
	return &EdamamProvider{
		appID:   os.Getenv("EDAMAM_APP_ID"),
		appKey:  os.Getenv("EDAMAM_APP_KEY"),
		baseURL: edamamRecipeURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *EdamamProvider) Name() string { return "edamam" }

type edamamResponse struct {
	Hits []struct {
		Recipe struct {
			URI             string   `json:"uri"`
			Label           string   `json:"label"`
			Image           string   `json:"image"`
			IngredientLines []string `json:"ingredientLines"`
			Calories        float64  `json:"calories"`
			TotalTime       float64  `json:"totalTime"`
			Yield           float64  `json:"yield"`
			CuisineType     []string `json:"cuisineType"`
			TotalNutrients  map[string]struct {
				Quantity float64 `json:"quantity"`
			} `json:"totalNutrients"`
		} `json:"recipe"`
	} `json:"hits"`
}

// edamamDiets maps internal diet types to Edamam health/diet labels. Diets
// without a mapping are omitted from the query and enforced later by the
// preference filter.
var edamamDiets = map[string]string{
	models.DietVegetarian: "vegetarian",
	models.DietVegan:      "vegan",
	models.DietKeto:       "keto-friendly",
	models.DietPaleo:      "paleo",
}

func (p *EdamamProvider) Search(ctx context.Context, category models.MealSlot, dietType string, maxResults int) ([]CandidateMeal, error) {
	q := url.Values{}
	q.Set("type", "public")
	q.Set("q", slotQueries[category])
	q.Set("mealType", edamamMealType(category))
	q.Set("app_id", p.appID)
	q.Set("app_key", p.appKey)
	if health, ok := edamamDiets[dietType]; ok {
		q.Set("health", health)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create edamam request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: edamam: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: edamam: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: edamam API error %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var er edamamResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("failed to parse edamam JSON: %w", err)
	}

	results := make([]CandidateMeal, 0, len(er.Hits))
	for _, h := range er.Hits {
		if len(results) >= maxResults {
			break
		}
		r := h.Recipe
		externalID := r.URI
		if i := strings.LastIndex(r.URI, "#recipe_"); i >= 0 {
			externalID = r.URI[i+len("#recipe_"):]
		}
		if externalID == "" {
			continue
		}

		servings := int(r.Yield)
		if servings < 1 {
			servings = 1
		}
		perServing := func(total float64) *float64 {
			v := total / float64(servings)
			return &v
		}

		cand := CandidateMeal{
			SourceProvider: p.Name(),
			ExternalID:     externalID,
			Name:           r.Label,
			Category:       category,
			DietType:       dietType,
			CookTime:       int(r.TotalTime),
			Servings:       servings,
			Ingredients:    r.IngredientLines,
			ImageURL:       r.Image,
		}
		if len(r.CuisineType) > 0 {
			cand.CuisineType = strings.ToUpper(r.CuisineType[0])
		}
		if r.Calories > 0 {
			cal := int(r.Calories / float64(servings))
			cand.Calories = &cal
		}
		if n, ok := r.TotalNutrients["PROCNT"]; ok {
			cand.Protein = perServing(n.Quantity)
		}
		if n, ok := r.TotalNutrients["CHOCDF"]; ok {
			cand.Carbs = perServing(n.Quantity)
		}
		if n, ok := r.TotalNutrients["FAT"]; ok {
			cand.Fat = perServing(n.Quantity)
		}
		if n, ok := r.TotalNutrients["FIBTG"]; ok {
			cand.Fiber = perServing(n.Quantity)
		}
		if n, ok := r.TotalNutrients["SUGAR"]; ok {
			cand.Sugar = perServing(n.Quantity)
		}
		if n, ok := r.TotalNutrients["NA"]; ok {
			cand.Sodium = perServing(n.Quantity)
		}
		results = append(results, cand)
	}
	return results, nil
}

func edamamMealType(slot models.MealSlot) string {
	switch slot {
	case models.SlotBreakfast:
		return "Breakfast"
	case models.SlotLunch:
		return "Lunch"
	case models.SlotDinner:
		return "Dinner"
	default:
		return "Snack"
	}
}
