package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/provider"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
)

func TestCatalogFindByCategoryAndDiet(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	catalog := NewCatalogService(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Meal{Name: "Oatmeal", Category: models.SlotBreakfast, DietType: models.DietVegan}).Error)
	require.NoError(t, db.Create(&models.Meal{Name: "Omelette", Category: models.SlotBreakfast, DietType: models.DietVegetarian}).Error)
	require.NoError(t, db.Create(&models.Meal{Name: "Salad", Category: models.SlotLunch, DietType: models.DietVegan}).Error)

	meals, err := catalog.FindByCategoryAndDiet(ctx, models.SlotBreakfast, models.DietVegan)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "Oatmeal", meals[0].Name)

	meals, err = catalog.FindByCategory(ctx, models.SlotBreakfast)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestCatalogUpsertByProvenance(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	catalog := NewCatalogService(db)
	ctx := context.Background()

	calories := 400
	cand := provider.CandidateMeal{
		SourceProvider: "edamam",
		ExternalID:     "recipe-42",
		Name:           "Shakshuka",
		Category:       models.SlotBreakfast,
		DietType:       models.DietVegetarian,
		Ingredients:    []string{"eggs", "tomatoes"},
		Calories:       &calories,
	}

	first, err := catalog.UpsertByProvenance(ctx, cand)
	require.NoError(t, err)

	// Re-upserting the same provenance converges to the same row with
	// refreshed nutrition, not a duplicate.
	updated := 450
	cand.Calories = &updated
	second, err := catalog.UpsertByProvenance(ctx, cand)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Calories)
	assert.Equal(t, 450, *second.Calories)

	var count int64
	require.NoError(t, db.Model(&models.Meal{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCatalogLocalMealsDoNotCollide(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	ctx := context.Background()
	catalog := NewCatalogService(db)

	// Local meals have no provenance; the unique provenance index must not
	// treat them as duplicates of each other.
	_, err := catalog.CreateMeal(ctx, &models.Meal{Name: "House Granola", Category: models.SlotBreakfast})
	require.NoError(t, err)
	_, err = catalog.CreateMeal(ctx, &models.Meal{Name: "House Pancakes", Category: models.SlotBreakfast})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Meal{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCatalogListAndSearch(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	catalog := NewCatalogService(db)
	ctx := context.Background()

	calories := 700
	require.NoError(t, db.Create(&models.Meal{Name: "Margherita Pizza", Category: models.SlotDinner, DietType: models.DietVegetarian, CuisineType: "italian", Calories: &calories}).Error)
	light := 300
	require.NoError(t, db.Create(&models.Meal{Name: "Caprese Salad", Category: models.SlotLunch, DietType: models.DietVegetarian, CuisineType: "italian", Calories: &light}).Error)

	meals, err := catalog.ListMeals(ctx, MealFilters{CuisineType: "italian", MaxCalories: 500})
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "Caprese Salad", meals[0].Name)

	meals, err = catalog.SearchMealsByName(ctx, "pizza")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "Margherita Pizza", meals[0].Name)
}

func TestCatalogCRUD(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	catalog := NewCatalogService(db)
	ctx := context.Background()

	created, err := catalog.CreateMeal(ctx, &models.Meal{Name: "Ratatouille", Category: models.SlotDinner, DietType: models.DietVegan})
	require.NoError(t, err)

	fetched, err := catalog.GetMeal(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ratatouille", fetched.Name)

	updated, err := catalog.UpdateMeal(ctx, created.ID, &models.Meal{Description: "Provencal stew"})
	require.NoError(t, err)
	assert.Equal(t, "Provencal stew", updated.Description)
	assert.Equal(t, "Ratatouille", updated.Name)

	require.NoError(t, catalog.DeleteMeal(ctx, created.ID))
	_, err = catalog.GetMeal(ctx, created.ID)
	assert.Error(t, err)
}
