package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/mealplanner/backend/internal/models"
)

const spoonacularSearchURL = "https://api.spoonacular.com/recipes/complexSearch"

// SpoonacularProvider searches the Spoonacular complexSearch API.
type SpoonacularProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSpoonacularProvider() *SpoonacularProvider {
	return &SpoonacularProvider{
		apiKey:  os.Getenv("SPOONACULAR_API_KEY"),
		baseURL: spoonacularSearchURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *SpoonacularProvider) Name() string { return "spoonacular" }

type spoonacularResponse struct {
	Results []struct {
		ID             int      `json:"id"`
		Title          string   `json:"title"`
		Image          string   `json:"image"`
		ReadyInMinutes int      `json:"readyInMinutes"`
		Servings       int      `json:"servings"`
		Cuisines       []string `json:"cuisines"`
		Summary        string   `json:"summary"`
		Nutrition      struct {
			Nutrients []struct {
				Name   string  `json:"name"`
				Amount float64 `json:"amount"`
			} `json:"nutrients"`
		} `json:"nutrition"`
		ExtendedIngredients []struct {
			Original string `json:"original"`
		} `json:"extendedIngredients"`
	} `json:"results"`
}

var spoonacularDiets = map[string]string{
	models.DietVegetarian:    "vegetarian",
	models.DietVegan:         "vegan",
	models.DietKeto:          "ketogenic",
	models.DietPaleo:         "paleo",
	models.DietMediterranean: "mediterranean",
}

func (p *SpoonacularProvider) Search(ctx context.Context, category models.MealSlot, dietType string, maxResults int) ([]CandidateMeal, error) {
	q := url.Values{}
	q.Set("query", slotQueries[category])
	q.Set("type", spoonacularMealType(category))
	q.Set("number", strconv.Itoa(maxResults))
	q.Set("addRecipeNutrition", "true")
	q.Set("apiKey", p.apiKey)
	if diet, ok := spoonacularDiets[dietType]; ok {
		q.Set("diet", diet)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create spoonacular request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: spoonacular: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: spoonacular: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: spoonacular API error %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var sr spoonacularResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse spoonacular JSON: %w", err)
	}

	results := make([]CandidateMeal, 0, len(sr.Results))
	for _, r := range sr.Results {
		if len(results) >= maxResults {
			break
		}

		ingredients := make([]string, 0, len(r.ExtendedIngredients))
		for _, ing := range r.ExtendedIngredients {
			ingredients = append(ingredients, ing.Original)
		}

		cand := CandidateMeal{
			SourceProvider: p.Name(),
			ExternalID:     strconv.Itoa(r.ID),
			Name:           r.Title,
			Description:    r.Summary,
			Category:       category,
			DietType:       dietType,
			CookTime:       r.ReadyInMinutes,
			Servings:       r.Servings,
			Ingredients:    ingredients,
			ImageURL:       r.Image,
		}
		if len(r.Cuisines) > 0 {
			cand.CuisineType = strings.ToUpper(r.Cuisines[0])
		}
		for _, n := range r.Nutrition.Nutrients {
			amount := n.Amount
			switch n.Name {
			case "Calories":
				cal := int(amount)
				cand.Calories = &cal
			case "Protein":
				cand.Protein = &amount
			case "Carbohydrates":
				cand.Carbs = &amount
			case "Fat":
				cand.Fat = &amount
			case "Fiber":
				cand.Fiber = &amount
			case "Sugar":
				cand.Sugar = &amount
			case "Sodium":
				cand.Sodium = &amount
			}
		}
		results = append(results, cand)
	}
	return results, nil
}

func spoonacularMealType(slot models.MealSlot) string {
	switch slot {
	case models.SlotBreakfast:
		return "breakfast"
	case models.SlotSnack:
		return "snack"
	default:
		return "main course"
	}
}
