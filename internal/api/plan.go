package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
)

const dateLayout = "2006-01-02"

// PlanHandler exposes the selection engine and the annual plan surface.
type PlanHandler struct {
	selector    *service.MealSelector
	assignments *service.AssignmentService
	generator   *service.PlanGenerator
}

func NewPlanHandler(selector *service.MealSelector, assignments *service.AssignmentService, generator *service.PlanGenerator) *PlanHandler {
	return &PlanHandler{
		selector:    selector,
		assignments: assignments,
		generator:   generator,
	}
}

// RegisterRoutes mounts the plan routes. generateMiddleware guards the
// expensive full-year regeneration endpoint and may be empty.
func (h *PlanHandler) RegisterRoutes(protected *gin.RouterGroup, generateMiddleware ...gin.HandlerFunc) {
	plan := protected.Group("/plan")
	{
		plan.GET("/meal", h.SelectMeal)
		plan.GET("/day", h.GetDay)
		plan.PUT("/feedback", h.UpdateFeedback)
		plan.GET("/stats", h.GetStats)
		plan.GET("/gaps", h.GetGaps)

		generate := append(generateMiddleware, h.Generate)
		plan.POST("/generate", generate...)
	}
}

// SelectMeal returns the meal for (user, date, slot), selecting and persisting
// one if the slot is unassigned.
func (h *PlanHandler) SelectMeal(c *gin.Context) {
	date, ok := parseDateParam(c)
	if !ok {
		return
	}
	slot, ok := parseSlotParam(c)
	if !ok {
		return
	}

	meal, err := h.selector.Select(c.Request.Context(), planOwner(c), date, slot)
	if err != nil {
		if errors.Is(err, service.ErrNoCandidates) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no meal available for this slot"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select meal"})
		return
	}
	c.JSON(http.StatusOK, meal)
}

// GetDay returns the day's assignments in slot order without triggering any
// new selections.
func (h *PlanHandler) GetDay(c *gin.Context) {
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	assignments, err := h.assignments.ListForDate(c.Request.Context(), planOwner(c), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list assignments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date.Format(dateLayout), "assignments": assignments})
}

// Generate rebuilds a full plan year and returns the generation report.
func (h *PlanHandler) Generate(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Year < 1970 || req.Year > 9999 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year out of range"})
		return
	}

	var owner *uuid.UUID
	if req.Personalized {
		userID := currentUserID(c)
		owner = &userID
	}

	report, err := h.generator.GenerateYear(c.Request.Context(), req.Year, owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate plan"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *PlanHandler) UpdateFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	slot, ok := models.ParseMealSlot(req.Slot)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}

	update := service.FeedbackUpdate{
		Rating:     req.Rating,
		IsFavorite: req.IsFavorite,
		Notes:      req.Notes,
	}
	assignment, err := h.assignments.UpdateFeedback(c.Request.Context(), planOwner(c), date, slot, date.Year(), update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update feedback"})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (h *PlanHandler) GetStats(c *gin.Context) {
	year, ok := parseYearParam(c)
	if !ok {
		return
	}

	stats, err := h.assignments.StatsForYear(c.Request.Context(), planOwner(c), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get plan stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *PlanHandler) GetGaps(c *gin.Context) {
	year, ok := parseYearParam(c)
	if !ok {
		return
	}

	gaps, err := h.assignments.ListGaps(c.Request.Context(), planOwner(c), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list gaps"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "gaps": gaps})
}

// planOwner resolves which plan the request addresses: the caller's own plan
// by default, the shared global plan with ?scope=global.
func planOwner(c *gin.Context) uuid.UUID {
	if c.Query("scope") == "global" {
		return models.SystemUserID
	}
	return currentUserID(c)
}

func parseDateParam(c *gin.Context) (time.Time, bool) {
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func parseSlotParam(c *gin.Context) (models.MealSlot, bool) {
	slot, ok := models.ParseMealSlot(c.Query("slot"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return "", false
	}
	return slot, true
}

func parseYearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
		return 0, false
	}
	return year, true
}
