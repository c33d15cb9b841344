package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealplanner/backend/internal/mocks"
	"github.com/pageza/mealplanner/backend/internal/models"
)

func fullCatalog() *mocks.InMemoryCatalog {
	return mocks.NewInMemoryCatalog(
		models.Meal{Name: "Oatmeal", Category: models.SlotBreakfast, DietType: models.DietMixed},
		models.Meal{Name: "Salad", Category: models.SlotLunch, DietType: models.DietMixed},
		models.Meal{Name: "Roast", Category: models.SlotDinner, DietType: models.DietMixed},
		models.Meal{Name: "Fruit", Category: models.SlotSnack, DietType: models.DietMixed},
	)
}

func TestGenerateYearFillsEverySlot(t *testing.T) {
	catalog := fullCatalog()
	selector, assignments := newSelector(catalog)
	generator := NewPlanGenerator(selector, assignments)

	report, err := generator.GenerateYear(context.Background(), 2026, nil)
	require.NoError(t, err)

	assert.Equal(t, 2026, report.Year)
	assert.Equal(t, 365*4, report.TotalSlots)
	assert.Equal(t, 365*4, report.FilledSlots)
	assert.Empty(t, report.Gaps)
	assert.Len(t, assignments.All(), 365*4)

	// Without a user the plan belongs to the system user.
	for _, a := range assignments.All() {
		assert.Equal(t, models.SystemUserID, a.UserID)
	}
}

func TestGenerateYearLeapYear(t *testing.T) {
	catalog := fullCatalog()
	selector, assignments := newSelector(catalog)
	generator := NewPlanGenerator(selector, assignments)

	report, err := generator.GenerateYear(context.Background(), 2028, nil)
	require.NoError(t, err)
	assert.Equal(t, 366*4, report.TotalSlots)
	assert.Equal(t, 366*4, report.FilledSlots)
	assert.Len(t, assignments.All(), 366*4)
}

func TestGenerateYearRecordsGaps(t *testing.T) {
	// No snack meals anywhere: every snack slot becomes a gap row.
	catalog := mocks.NewInMemoryCatalog(
		models.Meal{Name: "Oatmeal", Category: models.SlotBreakfast, DietType: models.DietMixed},
		models.Meal{Name: "Salad", Category: models.SlotLunch, DietType: models.DietMixed},
		models.Meal{Name: "Roast", Category: models.SlotDinner, DietType: models.DietMixed},
	)
	selector, assignments := newSelector(catalog)
	generator := NewPlanGenerator(selector, assignments)

	report, err := generator.GenerateYear(context.Background(), 2026, nil)
	require.NoError(t, err)

	assert.Equal(t, 365*4, report.TotalSlots)
	assert.Equal(t, 365*3, report.FilledSlots)
	require.Len(t, report.Gaps, 365)
	for _, gap := range report.Gaps {
		assert.Equal(t, models.SlotSnack, gap.Slot)
	}

	// Gaps and filled slots partition the year exactly, and every gap has a
	// placeholder row so later selections can fill it in place.
	assert.Equal(t, report.TotalSlots, report.FilledSlots+len(report.Gaps))
	gapRows := 0
	for _, a := range assignments.All() {
		if a.MealID == nil {
			gapRows++
		}
	}
	assert.Equal(t, 365, gapRows)
}

func TestGenerateYearIsDeterministic(t *testing.T) {
	catalog := fullCatalog()
	selector, assignments := newSelector(catalog)
	generator := NewPlanGenerator(selector, assignments)

	_, err := generator.GenerateYear(context.Background(), 2026, nil)
	require.NoError(t, err)
	firstRun := map[string]uuid.UUID{}
	for _, a := range assignments.All() {
		firstRun[a.MealDate.Format("2006-01-02")+string(a.MealSlot)] = *a.MealID
	}

	// Regeneration resets the year and reproduces the identical plan.
	_, err = generator.GenerateYear(context.Background(), 2026, nil)
	require.NoError(t, err)
	require.Len(t, assignments.All(), len(firstRun))
	for _, a := range assignments.All() {
		assert.Equal(t, firstRun[a.MealDate.Format("2006-01-02")+string(a.MealSlot)], *a.MealID)
	}
}

func TestGenerateYearScopedToUser(t *testing.T) {
	catalog := fullCatalog()
	selector, assignments := newSelector(catalog)
	generator := NewPlanGenerator(selector, assignments)

	userID := uuid.New()
	_, err := generator.GenerateYear(context.Background(), 2026, &userID)
	require.NoError(t, err)

	for _, a := range assignments.All() {
		assert.Equal(t, userID, a.UserID)
	}

	// Regenerating the global plan must not touch the user's plan.
	_, err = generator.GenerateYear(context.Background(), 2026, nil)
	require.NoError(t, err)
	assert.Len(t, assignments.All(), 2*365*4)
}

func TestGenerateYearStopsOnCancel(t *testing.T) {
	catalog := fullCatalog()
	selector, assignments := newSelector(catalog)
	generator := NewPlanGenerator(selector, assignments)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := generator.GenerateYear(ctx, 2026, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.FilledSlots)
	assert.Empty(t, assignments.All())
}
