package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
)

const maxImageSize = 5 << 20 // 5MB

type MealHandler struct {
	catalog *service.CatalogService
	images  *service.ImageService
}

// NewMealHandler wires the catalog CRUD surface. images may be nil when no
// object storage is configured; uploads then return 503.
func NewMealHandler(catalog *service.CatalogService, images *service.ImageService) *MealHandler {
	return &MealHandler{catalog: catalog, images: images}
}

func (h *MealHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/meals", h.ListMeals)
	public.GET("/meals/search", h.SearchMeals)
	public.GET("/meals/:id", h.GetMeal)

	protected.POST("/meals", h.CreateMeal)
	protected.PUT("/meals/:id", h.UpdateMeal)
	protected.DELETE("/meals/:id", h.DeleteMeal)
	protected.POST("/meals/:id/image", h.UploadImage)
}

func (h *MealHandler) ListMeals(c *gin.Context) {
	filters := service.MealFilters{
		DietType:    c.Query("diet_type"),
		CuisineType: c.Query("cuisine_type"),
	}
	if category := c.Query("category"); category != "" {
		slot, ok := models.ParseMealSlot(category)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		filters.Category = slot
	}
	if raw := c.Query("max_calories"); raw != "" {
		maxCalories, err := strconv.Atoi(raw)
		if err != nil || maxCalories <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_calories must be a positive integer"})
			return
		}
		filters.MaxCalories = maxCalories
	}

	meals, err := h.catalog.ListMeals(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list meals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *MealHandler) SearchMeals(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing search query"})
		return
	}

	meals, err := h.catalog.SearchMealsByName(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search meals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *MealHandler) GetMeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal ID"})
		return
	}

	meal, err := h.catalog.GetMeal(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get meal"})
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *MealHandler) CreateMeal(c *gin.Context) {
	var meal models.Meal
	if err := c.ShouldBindJSON(&meal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if meal.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if _, ok := models.ParseMealSlot(string(meal.Category)); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	created, err := h.catalog.CreateMeal(c.Request.Context(), &meal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meal"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *MealHandler) UpdateMeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal ID"})
		return
	}

	var meal models.Meal
	if err := c.ShouldBindJSON(&meal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.catalog.UpdateMeal(c.Request.Context(), id, &meal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meal"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *MealHandler) DeleteMeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal ID"})
		return
	}

	if err := h.catalog.DeleteMeal(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meal"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *MealHandler) UploadImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage is not configured"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal ID"})
		return
	}
	meal, err := h.catalog.GetMeal(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image file"})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the 5MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.images.UploadMealImage(c.Request.Context(), meal.ID, data, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	meal.ImageURL = url
	if _, err := h.catalog.UpdateMeal(c.Request.Context(), meal.ID, &models.Meal{ImageURL: url}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
