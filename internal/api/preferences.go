package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
)

type PreferencesHandler struct {
	preferences *service.PreferencesService
}

func NewPreferencesHandler(preferences *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferences: preferences}
}

func (h *PreferencesHandler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/preferences", h.GetPreferences)
	protected.PUT("/preferences", h.UpdatePreferences)
}

func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID := currentUserID(c)

	prefs, err := h.preferences.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get preferences"})
		return
	}
	if prefs == nil {
		prefs = models.DefaultPreferences()
		prefs.UserID = userID
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	userID := currentUserID(c)

	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs := &models.UserPreferences{
		DietType:           req.DietType,
		DailyCalorieTarget: req.DailyCalorieTarget,
		CookingSkillLevel:  req.CookingSkillLevel,
		PreferredCuisines:  models.JSONBStringArray(req.PreferredCuisines),
		Allergies:          models.JSONBStringArray(req.Allergies),
		Dislikes:           models.JSONBStringArray(req.Dislikes),
	}

	saved, err := h.preferences.UpsertPreferences(c.Request.Context(), userID, prefs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// currentUserID reads the identity the auth middleware stored on the context.
func currentUserID(c *gin.Context) uuid.UUID {
	if raw, exists := c.Get("user_id"); exists {
		if id, ok := raw.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
