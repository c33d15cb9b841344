package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/provider"
)

// CatalogService is the gorm-backed CatalogStore plus the CRUD surface the
// meal API exposes.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) FindByCategoryAndDiet(ctx context.Context, category models.MealSlot, dietType string) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("category = ? AND diet_type = ?", category, dietType).
		Find(&meals).Error
	return meals, err
}

func (s *CatalogService) FindByCategory(ctx context.Context, category models.MealSlot) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("category = ?", category).
		Find(&meals).Error
	return meals, err
}

// mutableProvenanceColumns are the fields refreshed when a meal is re-fetched
// from its provider. Identity fields keep their first-write values.
var mutableProvenanceColumns = []string{
	"calories", "protein", "carbs", "fat", "fiber", "sugar", "sodium",
	"image_url", "updated_at",
}

// UpsertByProvenance caches an external candidate, converging concurrent
// upserts of the same (sourceProvider, externalId) to a single row.
func (s *CatalogService) UpsertByProvenance(ctx context.Context, cand provider.CandidateMeal) (*models.Meal, error) {
	meal := candidateToMeal(cand)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_provider"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(mutableProvenanceColumns),
	}).Create(&meal).Error
	if err != nil {
		return nil, err
	}

	// Re-read by provenance: on conflict the insert id is not the row id.
	var out models.Meal
	err = s.db.WithContext(ctx).
		Where("source_provider = ? AND external_id = ?", cand.SourceProvider, cand.ExternalID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func candidateToMeal(cand provider.CandidateMeal) models.Meal {
	sourceProvider := cand.SourceProvider
	externalID := cand.ExternalID
	return models.Meal{
		Name:            cand.Name,
		Description:     cand.Description,
		Category:        cand.Category,
		DietType:        cand.DietType,
		CuisineType:     cand.CuisineType,
		DifficultyLevel: cand.DifficultyLevel,
		PrepTime:        cand.PrepTime,
		CookTime:        cand.CookTime,
		Servings:        cand.Servings,
		Ingredients:     models.JSONBStringArray(cand.Ingredients),
		Instructions:    models.JSONBStringArray(cand.Instructions),
		Calories:        cand.Calories,
		Protein:         cand.Protein,
		Carbs:           cand.Carbs,
		Fat:             cand.Fat,
		Fiber:           cand.Fiber,
		Sugar:           cand.Sugar,
		Sodium:          cand.Sodium,
		ImageURL:        cand.ImageURL,
		SourceProvider:  &sourceProvider,
		ExternalID:      &externalID,
	}
}

// MealFilters narrows ListMeals. Zero values mean "no constraint".
type MealFilters struct {
	Category    models.MealSlot
	DietType    string
	CuisineType string
	MaxCalories int
}

func (s *CatalogService) ListMeals(ctx context.Context, filters MealFilters) ([]models.Meal, error) {
	query := s.db.WithContext(ctx)
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.DietType != "" {
		query = query.Where("diet_type = ?", filters.DietType)
	}
	if filters.CuisineType != "" {
		query = query.Where("cuisine_type = ?", filters.CuisineType)
	}
	if filters.MaxCalories > 0 {
		query = query.Where("calories <= ?", filters.MaxCalories)
	}

	var meals []models.Meal
	err := query.Find(&meals).Error
	return meals, err
}

// SearchMealsByName does a case-insensitive name/description search.
func (s *CatalogService) SearchMealsByName(ctx context.Context, name string) ([]models.Meal, error) {
	like := "%" + strings.ToLower(name) + "%"
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Find(&meals).Error
	return meals, err
}

func (s *CatalogService) GetMeal(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *CatalogService) CreateMeal(ctx context.Context, meal *models.Meal) (*models.Meal, error) {
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *CatalogService) UpdateMeal(ctx context.Context, id uuid.UUID, meal *models.Meal) (*models.Meal, error) {
	if err := s.db.WithContext(ctx).Model(&models.Meal{}).Where("id = ?", id).Updates(meal).Error; err != nil {
		return nil, err
	}
	return s.GetMeal(ctx, id)
}

func (s *CatalogService) DeleteMeal(ctx context.Context, id uuid.UUID) error {
	var meal models.Meal
	if err := s.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Meal{}, "id = ?", id).Error
}
