package service

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/provider"
)

// SelectorConfig holds the tunable constants of the selection engine.
type SelectorConfig struct {
	// MinCandidates is the admissible-candidate threshold below which the
	// provider fallback chain is consulted.
	MinCandidates int
	// MaxProviderResults caps how many candidates are requested per provider.
	MaxProviderResults int
	// ProviderTimeout bounds every provider call; a timed-out provider counts
	// as failed and the chain moves on.
	ProviderTimeout time.Duration
	// MealsPerDay divides the daily calorie target into a per-meal budget.
	MealsPerDay int
	// CalorieSlack is the tolerated factor over the per-meal budget.
	CalorieSlack float64
	Weights      ScoreWeights
	// ShuffleSeed, when non-zero, enables a deterministic variety shuffle of
	// the candidate list before filtering. It never affects the final pick
	// rule (highest score, lowest id).
	ShuffleSeed int64
}

func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		MinCandidates:      1,
		MaxProviderResults: 10,
		ProviderTimeout:    10 * time.Second,
		MealsPerDay:        4,
		CalorieSlack:       1.2,
		Weights:            DefaultScoreWeights(),
	}
}

// MealSelector picks one meal for a (user, date, slot) and persists the
// choice. Repeated calls for the same key return the stored assignment and
// never re-run filtering, so selections stay stable even after preference
// changes.
type MealSelector struct {
	catalog     CatalogStore
	assignments AssignmentStore
	preferences PreferencesProvider
	providers   []provider.Provider
	cfg         SelectorConfig
}

// NewMealSelector wires the selector. Providers are consulted in the given
// priority order.
func NewMealSelector(
	catalog CatalogStore,
	assignments AssignmentStore,
	preferences PreferencesProvider,
	providers []provider.Provider,
	cfg SelectorConfig,
) *MealSelector {
	return &MealSelector{
		catalog:     catalog,
		assignments: assignments,
		preferences: preferences,
		providers:   providers,
		cfg:         cfg,
	}
}

// Select returns the meal assigned to (userID, date, slot), creating the
// assignment if it does not exist yet. It is idempotent per key and safe
// under concurrent calls: the first writer wins, later writers adopt the
// winner's meal.
func (s *MealSelector) Select(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot) (*models.Meal, error) {
	date = models.NormalizeDate(date)
	year := date.Year()

	existing, err := s.assignments.FindAssignment(ctx, userID, date, slot, year)
	if err != nil {
		return nil, err
	}
	var gapID *uuid.UUID
	if existing != nil {
		if existing.Meal != nil {
			return existing.Meal, nil
		}
		// Gap row left by the generator: try to fill it in place.
		gapID = &existing.ID
	}

	prefs, err := s.preferences.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = models.DefaultPreferences()
	}

	chosen, err := s.pickCandidate(ctx, slot, prefs)
	if err != nil {
		return nil, err
	}

	if gapID != nil {
		filled, err := s.assignments.FillGap(ctx, *gapID, chosen.ID)
		if err != nil {
			return nil, err
		}
		if filled.Meal != nil {
			return filled.Meal, nil
		}
		return chosen, nil
	}

	assignment, created, err := s.assignments.CreateIfAbsent(ctx, userID, date, slot, year, &chosen.ID)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the create race: discard the local choice and adopt the
		// winner's assignment so both callers observe the same meal.
		if assignment.Meal != nil {
			return assignment.Meal, nil
		}
		if assignment.MealID == nil {
			filled, err := s.assignments.FillGap(ctx, assignment.ID, chosen.ID)
			if err != nil {
				return nil, err
			}
			if filled.Meal != nil {
				return filled.Meal, nil
			}
		}
	}
	return chosen, nil
}

// pickCandidate runs the query → fallback → filter → relax → score pipeline
// without touching the assignment table.
func (s *MealSelector) pickCandidate(ctx context.Context, slot models.MealSlot, prefs *models.UserPreferences) (*models.Meal, error) {
	candidates, err := s.catalog.FindByCategoryAndDiet(ctx, slot, prefs.DietType)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		if candidates, err = s.catalog.FindByCategory(ctx, slot); err != nil {
			return nil, err
		}
	}

	if s.cfg.ShuffleSeed != 0 {
		rng := rand.New(rand.NewSource(s.cfg.ShuffleSeed))
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}

	admissible := FilterMeals(candidates, prefs, s.cfg.MealsPerDay, s.cfg.CalorieSlack)
	if len(admissible) < s.cfg.MinCandidates {
		fetched := s.fetchFromProviders(ctx, slot, prefs.DietType)
		if len(fetched) > 0 {
			candidates = append(candidates, fetched...)
			admissible = FilterMeals(candidates, prefs, s.cfg.MealsPerDay, s.cfg.CalorieSlack)
		}
	}

	pool := admissible
	if len(pool) == 0 {
		pool = FilterMealsRelaxed(candidates, prefs, s.cfg.MealsPerDay, s.cfg.CalorieSlack)
	}
	if len(pool) == 0 {
		// Soft-fail: a plan must always produce something, but the allergy
		// exclusion is never relaxed.
		pool = FilterAllergySafe(candidates, prefs)
	}
	if len(pool) == 0 {
		return nil, ErrNoCandidates
	}

	return pickBest(pool, prefs, s.cfg.Weights), nil
}

// fetchFromProviders walks the provider chain in priority order, stopping at
// the first provider that returns candidates. Every fetched candidate is
// upserted into the catalog before use, so a cancelled or failed selection
// still enriches future lookups.
func (s *MealSelector) fetchFromProviders(ctx context.Context, slot models.MealSlot, dietType string) []models.Meal {
	var meals []models.Meal
	for _, p := range s.providers {
		pctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
		cands, err := p.Search(pctx, slot, dietType, s.cfg.MaxProviderResults)
		cancel()
		if err != nil {
			log.Printf("provider %s failed, trying next: %v", p.Name(), err)
			continue
		}
		for _, cand := range cands {
			meal, err := s.catalog.UpsertByProvenance(ctx, cand)
			if err != nil {
				log.Printf("failed to cache %s meal %s: %v", cand.SourceProvider, cand.ExternalID, err)
				continue
			}
			meals = append(meals, *meal)
		}
		if len(meals) > 0 {
			break
		}
	}
	return meals
}

// pickBest returns the highest-scored meal; ties break deterministically on
// the lowest catalog id so repeated runs are reproducible.
func pickBest(pool []models.Meal, prefs *models.UserPreferences, w ScoreWeights) *models.Meal {
	sort.Slice(pool, func(i, j int) bool {
		si, sj := ScoreMeal(&pool[i], prefs, w), ScoreMeal(&pool[j], prefs, w)
		if si != sj {
			return si > sj
		}
		return pool[i].ID.String() < pool[j].ID.String()
	})
	return &pool[0]
}
