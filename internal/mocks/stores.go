package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/provider"
)

// InMemoryCatalog is a CatalogStore backed by a slice. UpsertByProvenance
// deduplicates on the provenance pair like the database unique index does.
type InMemoryCatalog struct {
	mu    sync.Mutex
	meals []models.Meal

	// FindErr, when set, is returned by both Find methods.
	FindErr error
	// UpsertErr, when set, is returned by UpsertByProvenance.
	UpsertErr error
}

func NewInMemoryCatalog(meals ...models.Meal) *InMemoryCatalog {
	c := &InMemoryCatalog{}
	for _, m := range meals {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		c.meals = append(c.meals, m)
	}
	return c
}

func (c *InMemoryCatalog) FindByCategoryAndDiet(ctx context.Context, category models.MealSlot, dietType string) ([]models.Meal, error) {
	if c.FindErr != nil {
		return nil, c.FindErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Meal
	for _, m := range c.meals {
		if m.Category == category && m.DietType == dietType {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *InMemoryCatalog) FindByCategory(ctx context.Context, category models.MealSlot) ([]models.Meal, error) {
	if c.FindErr != nil {
		return nil, c.FindErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Meal
	for _, m := range c.meals {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *InMemoryCatalog) UpsertByProvenance(ctx context.Context, cand provider.CandidateMeal) (*models.Meal, error) {
	if c.UpsertErr != nil {
		return nil, c.UpsertErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.meals {
		p, ext, ok := c.meals[i].Provenance()
		if ok && p == cand.SourceProvider && ext == cand.ExternalID {
			if cand.Calories != nil {
				c.meals[i].Calories = cand.Calories
			}
			out := c.meals[i]
			return &out, nil
		}
	}

	sourceProvider := cand.SourceProvider
	externalID := cand.ExternalID
	meal := models.Meal{
		ID:              uuid.New(),
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
		SourceProvider:  &sourceProvider,
		ExternalID:      &externalID,
	}
	c.meals = append(c.meals, meal)
	return &meal, nil
}

// Meals returns a snapshot of the catalog contents.
func (c *InMemoryCatalog) Meals() []models.Meal {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Meal, len(c.meals))
	copy(out, c.meals)
	return out
}

// InMemoryAssignments is an AssignmentStore with the same first-writer-wins
// semantics as the unique index the real store relies on.
type InMemoryAssignments struct {
	mu     sync.Mutex
	byKey  map[string]*models.MealAssignment
	lookup func(mealID uuid.UUID) *models.Meal

	// CreateErr, when set, is returned by CreateIfAbsent.
	CreateErr error
}

// NewInMemoryAssignments builds the store. lookup resolves a meal id to its
// meal for preloading and may be nil.
func NewInMemoryAssignments(lookup func(mealID uuid.UUID) *models.Meal) *InMemoryAssignments {
	return &InMemoryAssignments{
		byKey:  map[string]*models.MealAssignment{},
		lookup: lookup,
	}
}

func assignmentKey(userID uuid.UUID, date time.Time, slot models.MealSlot, year int) string {
	return fmt.Sprintf("%s|%s|%s|%d", userID, models.NormalizeDate(date).Format("2006-01-02"), slot, year)
}

func (a *InMemoryAssignments) preload(assignment *models.MealAssignment) *models.MealAssignment {
	out := *assignment
	if out.MealID != nil && a.lookup != nil {
		out.Meal = a.lookup(*out.MealID)
	}
	return &out
}

func (a *InMemoryAssignments) FindAssignment(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot, year int) (*models.MealAssignment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	assignment, ok := a.byKey[assignmentKey(userID, date, slot, year)]
	if !ok {
		return nil, nil
	}
	return a.preload(assignment), nil
}

func (a *InMemoryAssignments) CreateIfAbsent(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot, year int, mealID *uuid.UUID) (*models.MealAssignment, bool, error) {
	if a.CreateErr != nil {
		return nil, false, a.CreateErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	key := assignmentKey(userID, date, slot, year)
	if existing, ok := a.byKey[key]; ok {
		return a.preload(existing), false, nil
	}

	assignment := &models.MealAssignment{
		ID:       uuid.New(),
		UserID:   userID,
		MealDate: models.NormalizeDate(date),
		MealSlot: slot,
		Year:     year,
		MealID:   mealID,
	}
	a.byKey[key] = assignment
	return a.preload(assignment), true, nil
}

func (a *InMemoryAssignments) FillGap(ctx context.Context, assignmentID uuid.UUID, mealID uuid.UUID) (*models.MealAssignment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, assignment := range a.byKey {
		if assignment.ID == assignmentID {
			if assignment.MealID == nil {
				id := mealID
				assignment.MealID = &id
			}
			return a.preload(assignment), nil
		}
	}
	return nil, fmt.Errorf("assignment %s not found", assignmentID)
}

func (a *InMemoryAssignments) DeleteByYear(ctx context.Context, userID uuid.UUID, year int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, assignment := range a.byKey {
		if assignment.UserID == userID && assignment.Year == year {
			delete(a.byKey, key)
		}
	}
	return nil
}

// All returns a snapshot of every stored assignment.
func (a *InMemoryAssignments) All() []models.MealAssignment {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.MealAssignment, 0, len(a.byKey))
	for _, assignment := range a.byKey {
		out = append(out, *assignment)
	}
	return out
}

// StaticPreferences is a PreferencesProvider returning a fixed value.
type StaticPreferences struct {
	Prefs *models.UserPreferences
	Err   error
}

func (p *StaticPreferences) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	return p.Prefs, p.Err
}

// MockProvider is a scriptable external provider.
type MockProvider struct {
	mock.Mock
	ProviderName string
}

func (m *MockProvider) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockProvider) Search(ctx context.Context, category models.MealSlot, dietType string, maxResults int) ([]provider.CandidateMeal, error) {
	args := m.Called(ctx, category, dietType, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.CandidateMeal), args.Error(1)
}
