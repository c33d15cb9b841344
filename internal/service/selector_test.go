package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealplanner/backend/internal/mocks"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/provider"
)

func newSelector(catalog *mocks.InMemoryCatalog, providers ...provider.Provider) (*MealSelector, *mocks.InMemoryAssignments) {
	assignments := mocks.NewInMemoryAssignments(func(mealID uuid.UUID) *models.Meal {
		for _, m := range catalog.Meals() {
			if m.ID == mealID {
				meal := m
				return &meal
			}
		}
		return nil
	})
	prefs := &mocks.StaticPreferences{}
	return NewMealSelector(catalog, assignments, prefs, providers, DefaultSelectorConfig()), assignments
}

func TestSelectIsIdempotent(t *testing.T) {
	catalog := mocks.NewInMemoryCatalog(
		models.Meal{Name: "Oatmeal", Category: models.SlotBreakfast, DietType: models.DietMixed},
		models.Meal{Name: "Pancakes", Category: models.SlotBreakfast, DietType: models.DietMixed},
	)
	selector, assignments := newSelector(catalog)

	userID := uuid.New()
	date := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.Local)

	first, err := selector.Select(context.Background(), userID, date, models.SlotBreakfast)
	require.NoError(t, err)

	second, err := selector.Select(context.Background(), userID, date, models.SlotBreakfast)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, assignments.All(), 1)
}

func TestSelectNormalizesDate(t *testing.T) {
	catalog := mocks.NewInMemoryCatalog(
		models.Meal{Name: "Oatmeal", Category: models.SlotBreakfast, DietType: models.DietMixed},
	)
	selector, assignments := newSelector(catalog)

	userID := uuid.New()
	morning := time.Date(2026, time.March, 14, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, time.March, 14, 23, 0, 0, 0, time.UTC)

	_, err := selector.Select(context.Background(), userID, morning, models.SlotBreakfast)
	require.NoError(t, err)
	_, err = selector.Select(context.Background(), userID, evening, models.SlotBreakfast)
	require.NoError(t, err)
	assert.Len(t, assignments.All(), 1)
}

func TestSelectPrefersScoredCandidate(t *testing.T) {
	calorieTarget := 2000
	prefs := &models.UserPreferences{
		DietType:           models.DietVegan,
		DailyCalorieTarget: &calorieTarget,
		PreferredCuisines:  models.JSONBStringArray{"thai"},
	}

	catalog := mocks.NewInMemoryCatalog(
		models.Meal{Name: "Plain Rice", Category: models.SlotDinner, DietType: models.DietVegan},
		models.Meal{Name: "Thai Curry", Category: models.SlotDinner, DietType: models.DietVegan, CuisineType: "thai", PrepTime: 10, CookTime: 15},
	)
	selector, _ := newSelector(catalog)
	selector.preferences = &mocks.StaticPreferences{Prefs: prefs}

	meal, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotDinner)
	require.NoError(t, err)
	assert.Equal(t, "Thai Curry", meal.Name)
}

func TestSelectTieBreaksOnLowestID(t *testing.T) {
	low := models.Meal{
		ID:       uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Name:     "First",
		Category: models.SlotLunch,
		DietType: models.DietMixed,
	}
	high := models.Meal{
		ID:       uuid.MustParse("99999999-9999-9999-9999-999999999999"),
		Name:     "Second",
		Category: models.SlotLunch,
		DietType: models.DietMixed,
	}

	// Same scores either way; insertion order must not matter.
	for _, ordered := range [][]models.Meal{{low, high}, {high, low}} {
		catalog := mocks.NewInMemoryCatalog(ordered...)
		selector, _ := newSelector(catalog)

		meal, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotLunch)
		require.NoError(t, err)
		assert.Equal(t, low.ID, meal.ID)
	}
}

func TestSelectFallsBackToProviders(t *testing.T) {
	catalog := mocks.NewInMemoryCatalog()

	failing := &mocks.MockProvider{ProviderName: "edamam"}
	failing.On("Search", mock.Anything, models.SlotDinner, models.DietMixed, 10).
		Return(nil, errors.New("upstream 500"))

	succeeding := &mocks.MockProvider{ProviderName: "spoonacular"}
	succeeding.On("Search", mock.Anything, models.SlotDinner, models.DietMixed, 10).
		Return([]provider.CandidateMeal{{
			SourceProvider: "spoonacular",
			ExternalID:     "meal-1",
			Name:           "Roast Chicken",
			Category:       models.SlotDinner,
			DietType:       models.DietMixed,
		}}, nil)

	selector, _ := newSelector(catalog, failing, succeeding)

	meal, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotDinner)
	require.NoError(t, err)
	assert.Equal(t, "Roast Chicken", meal.Name)

	// The fetched candidate was cached in the catalog.
	require.Len(t, catalog.Meals(), 1)
	p, ext, ok := catalog.Meals()[0].Provenance()
	require.True(t, ok)
	assert.Equal(t, "spoonacular", p)
	assert.Equal(t, "meal-1", ext)

	failing.AssertExpectations(t)
	succeeding.AssertExpectations(t)
}

func TestSelectProviderChainStopsAtFirstResults(t *testing.T) {
	catalog := mocks.NewInMemoryCatalog()

	first := &mocks.MockProvider{ProviderName: "edamam"}
	first.On("Search", mock.Anything, models.SlotSnack, models.DietMixed, 10).
		Return([]provider.CandidateMeal{{
			SourceProvider: "edamam",
			ExternalID:     "snack-1",
			Name:           "Trail Mix",
			Category:       models.SlotSnack,
			DietType:       models.DietMixed,
		}}, nil)

	second := &mocks.MockProvider{ProviderName: "spoonacular"}

	selector, _ := newSelector(catalog, first, second)

	meal, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotSnack)
	require.NoError(t, err)
	assert.Equal(t, "Trail Mix", meal.Name)

	// Second provider is never consulted once the first returns candidates.
	second.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSelectProviderDeduplicatesByProvenance(t *testing.T) {
	catalog := mocks.NewInMemoryCatalog()

	cand := provider.CandidateMeal{
		SourceProvider: "edamam",
		ExternalID:     "dup-1",
		Name:           "Granola Bar",
		Category:       models.SlotSnack,
		DietType:       models.DietMixed,
	}
	p := &mocks.MockProvider{ProviderName: "edamam"}
	p.On("Search", mock.Anything, models.SlotSnack, models.DietMixed, 10).
		Return([]provider.CandidateMeal{cand, cand}, nil)

	selector, _ := newSelector(catalog, p)

	_, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotSnack)
	require.NoError(t, err)
	assert.Len(t, catalog.Meals(), 1)
}

func TestSelectAllergyNeverRelaxed(t *testing.T) {
	catalog := mocks.NewInMemoryCatalog(
		models.Meal{Name: "Peanut Noodles", Category: models.SlotDinner, DietType: models.DietMixed,
			Ingredients: models.JSONBStringArray{"peanut", "noodles"}},
		models.Meal{Name: "Peanut Curry", Category: models.SlotDinner, DietType: models.DietMixed,
			Ingredients: models.JSONBStringArray{"peanut", "rice"}},
	)
	selector, assignments := newSelector(catalog)
	selector.preferences = &mocks.StaticPreferences{
		Prefs: &models.UserPreferences{Allergies: models.JSONBStringArray{"peanut"}},
	}

	_, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotDinner)
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.Empty(t, assignments.All())
}

func TestSelectScoresOnlyAllergySafeCandidates(t *testing.T) {
	// Three vegan dinners: the best-scoring one carries an allergen, the
	// runner-up matches the preferred cuisine, the last is plain. The allergen
	// meal must never win no matter how well it scores.
	peanut := models.Meal{ID: uuid.New(), Name: "Peanut Thai Curry", Category: models.SlotDinner, DietType: models.DietVegan,
		CuisineType: "thai", PrepTime: 5, CookTime: 10,
		Ingredients: models.JSONBStringArray{"peanut", "coconut milk", "rice"}}
	thai := models.Meal{ID: uuid.New(), Name: "Thai Green Curry", Category: models.SlotDinner, DietType: models.DietVegan,
		CuisineType: "thai",
		Ingredients: models.JSONBStringArray{"coconut milk", "eggplant", "rice"}}
	plain := models.Meal{ID: uuid.New(), Name: "Lentil Stew", Category: models.SlotDinner, DietType: models.DietVegan,
		Ingredients: models.JSONBStringArray{"lentils", "carrots"}}

	catalog := mocks.NewInMemoryCatalog(peanut, thai, plain)
	selector, assignments := newSelector(catalog)
	selector.preferences = &mocks.StaticPreferences{
		Prefs: &models.UserPreferences{
			DietType:          models.DietVegan,
			Allergies:         models.JSONBStringArray{"peanut"},
			PreferredCuisines: models.JSONBStringArray{"thai"},
		},
	}

	meal, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotDinner)
	require.NoError(t, err)
	assert.Equal(t, "Thai Green Curry", meal.Name)

	require.Len(t, assignments.All(), 1)
	assert.NotEqual(t, peanut.ID, *assignments.All()[0].MealID)
}

func TestSelectRelaxesDislikesBeforeFailing(t *testing.T) {
	catalog := mocks.NewInMemoryCatalog(
		models.Meal{Name: "Mushroom Soup", Category: models.SlotLunch, DietType: models.DietMixed,
			Ingredients: models.JSONBStringArray{"mushroom", "cream"}},
	)
	selector, _ := newSelector(catalog)
	selector.preferences = &mocks.StaticPreferences{
		Prefs: &models.UserPreferences{Dislikes: models.JSONBStringArray{"mushroom"}},
	}

	// The only candidate is disliked, so the relaxed stage serves it rather
	// than leaving the slot empty.
	meal, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotLunch)
	require.NoError(t, err)
	assert.Equal(t, "Mushroom Soup", meal.Name)
}

func TestSelectFillsGeneratorGap(t *testing.T) {
	catalog := mocks.NewInMemoryCatalog(
		models.Meal{Name: "Oatmeal", Category: models.SlotBreakfast, DietType: models.DietMixed},
	)
	selector, assignments := newSelector(catalog)

	userID := uuid.New()
	date := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)

	// A gap row as the generator leaves it: assignment exists, meal is null.
	gap, created, err := assignments.CreateIfAbsent(context.Background(), userID, date, models.SlotBreakfast, 2026, nil)
	require.NoError(t, err)
	require.True(t, created)
	require.Nil(t, gap.MealID)

	meal, err := selector.Select(context.Background(), userID, date, models.SlotBreakfast)
	require.NoError(t, err)
	assert.Equal(t, "Oatmeal", meal.Name)

	stored, err := assignments.FindAssignment(context.Background(), userID, date, models.SlotBreakfast, 2026)
	require.NoError(t, err)
	require.NotNil(t, stored.MealID)
	assert.Equal(t, meal.ID, *stored.MealID)
	assert.Len(t, assignments.All(), 1)
}

// racingAssignments reports "no assignment" on the first read so the caller
// proceeds to CreateIfAbsent and loses the race against a pre-seeded row.
type racingAssignments struct {
	*mocks.InMemoryAssignments
	read bool
}

func (r *racingAssignments) FindAssignment(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot, year int) (*models.MealAssignment, error) {
	if !r.read {
		r.read = true
		return nil, nil
	}
	return r.InMemoryAssignments.FindAssignment(ctx, userID, date, slot, year)
}

func TestSelectAdoptsRaceWinner(t *testing.T) {
	winner := models.Meal{ID: uuid.New(), Name: "Winner", Category: models.SlotDinner, DietType: models.DietMixed}
	loser := models.Meal{ID: uuid.New(), Name: "Loser", Category: models.SlotDinner, DietType: models.DietMixed}
	catalog := mocks.NewInMemoryCatalog(winner, loser)
	selector, assignments := newSelector(catalog)
	racing := &racingAssignments{InMemoryAssignments: assignments}
	selector.assignments = racing

	userID := uuid.New()
	date := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)

	// Another writer persists its pick between this caller's read and write.
	_, _, err := assignments.CreateIfAbsent(context.Background(), userID, date, models.SlotDinner, 2026, &winner.ID)
	require.NoError(t, err)

	meal, err := selector.Select(context.Background(), userID, date, models.SlotDinner)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, meal.ID)
	assert.Len(t, assignments.All(), 1)
}

func TestSelectNoCandidates(t *testing.T) {
	selector, _ := newSelector(mocks.NewInMemoryCatalog())

	_, err := selector.Select(context.Background(), uuid.New(), time.Now(), models.SlotBreakfast)
	assert.ErrorIs(t, err, ErrNoCandidates)
}
