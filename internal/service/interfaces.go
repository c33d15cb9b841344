package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/provider"
)

// CatalogStore is the durable collection of known meals. External candidates
// enter the catalog through UpsertByProvenance, which deduplicates on the
// (sourceProvider, externalId) pair.
type CatalogStore interface {
	FindByCategoryAndDiet(ctx context.Context, category models.MealSlot, dietType string) ([]models.Meal, error)
	FindByCategory(ctx context.Context, category models.MealSlot) ([]models.Meal, error)
	UpsertByProvenance(ctx context.Context, cand provider.CandidateMeal) (*models.Meal, error)
}

// AssignmentStore persists meal assignments. CreateIfAbsent is the atomic
// create-or-fetch-existing primitive that serializes concurrent selections
// for the same key: the first writer wins, later writers read back its row.
type AssignmentStore interface {
	FindAssignment(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot, year int) (*models.MealAssignment, error)
	CreateIfAbsent(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot, year int, mealID *uuid.UUID) (*models.MealAssignment, bool, error)
	FillGap(ctx context.Context, assignmentID uuid.UUID, mealID uuid.UUID) (*models.MealAssignment, error)
	DeleteByYear(ctx context.Context, userID uuid.UUID, year int) error
}

// PreferencesProvider resolves a user's saved preferences. A (nil, nil)
// return means the user has none and defaults apply.
type PreferencesProvider interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)
}
