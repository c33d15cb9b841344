package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
)

func setupPlanRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *service.CatalogService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDatabase(t)
	catalog := service.NewCatalogService(db)
	assignments := service.NewAssignmentService(db)
	preferences := service.NewPreferencesService(db)
	selector := service.NewMealSelector(catalog, assignments, preferences, nil, service.DefaultSelectorConfig())
	generator := service.NewPlanGenerator(selector, assignments)
	handler := NewPlanHandler(selector, assignments, generator)

	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
	})
	handler.RegisterRoutes(group)
	return router, catalog
}

func seedSlotMeals(t *testing.T, catalog *service.CatalogService) {
	t.Helper()
	for _, slot := range models.AllMealSlots {
		_, err := catalog.CreateMeal(context.Background(), &models.Meal{
			Name:     string(slot) + " special",
			Category: slot,
			DietType: models.DietMixed,
		})
		require.NoError(t, err)
	}
}

func TestSelectMealEndpoint(t *testing.T) {
	userID := uuid.New()
	router, catalog := setupPlanRouter(t, userID)
	seedSlotMeals(t, catalog)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/plan/meal?date=2026-03-14&slot=DINNER", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var meal models.Meal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meal))
	assert.Equal(t, "DINNER special", meal.Name)

	// Repeating the request returns the stored assignment, not a new pick.
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)
	var again models.Meal
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &again))
	assert.Equal(t, meal.ID, again.ID)
}

func TestSelectMealEndpointValidation(t *testing.T) {
	router, _ := setupPlanRouter(t, uuid.New())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/plan/meal?date=14-03-2026&slot=DINNER", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/plan/meal?date=2026-03-14&slot=BRUNCH", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectMealEndpointNoCandidates(t *testing.T) {
	router, _ := setupPlanRouter(t, uuid.New())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/plan/meal?date=2026-03-14&slot=DINNER", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateAndInspectPlan(t *testing.T) {
	userID := uuid.New()
	router, catalog := setupPlanRouter(t, userID)
	seedSlotMeals(t, catalog)

	body, _ := json.Marshal(GeneratePlanRequest{Year: 2026, Personalized: true})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/plan/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var report service.GenerationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 365*4, report.TotalSlots)
	assert.Equal(t, 365*4, report.FilledSlots)
	assert.Empty(t, report.Gaps)

	// Day view returns the four slots in order.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/plan/day?date=2026-08-01", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var day struct {
		Assignments []models.MealAssignment `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
	require.Len(t, day.Assignments, 4)
	assert.Equal(t, models.SlotBreakfast, day.Assignments[0].MealSlot)

	// Stats reflect the full year.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/plan/stats?year=2026", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var stats service.PlanStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(365*4), stats.Total)
	assert.Equal(t, int64(0), stats.GapCount)
}

func TestFeedbackEndpoint(t *testing.T) {
	userID := uuid.New()
	router, catalog := setupPlanRouter(t, userID)
	seedSlotMeals(t, catalog)

	// Assign a meal first.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/plan/meal?date=2026-03-14&slot=LUNCH", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	rating := 4
	favorite := true
	body, _ := json.Marshal(FeedbackRequest{
		Date:       "2026-03-14",
		Slot:       "LUNCH",
		Rating:     &rating,
		IsFavorite: &favorite,
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/api/v1/plan/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var assignment models.MealAssignment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assignment))
	require.NotNil(t, assignment.Rating)
	assert.Equal(t, 4, *assignment.Rating)
	assert.True(t, assignment.IsFavorite)

	// Feedback for an unassigned slot is a 404.
	body, _ = json.Marshal(FeedbackRequest{Date: "2026-03-15", Slot: "LUNCH", Rating: &rating})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/api/v1/plan/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
