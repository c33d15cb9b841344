package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealplanner/backend/internal/models"
)

// AssignmentService is the gorm-backed AssignmentStore plus the feedback and
// reporting surface the plan API exposes.
type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

func (s *AssignmentService) FindAssignment(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot, year int) (*models.MealAssignment, error) {
	var assignment models.MealAssignment
	err := s.db.WithContext(ctx).Preload("Meal").
		Where("user_id = ? AND meal_date = ? AND meal_slot = ? AND year = ?",
			userID, models.NormalizeDate(date), slot, year).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CreateIfAbsent atomically creates the assignment or, when another writer
// got there first, reads back and returns the winning row. The boolean
// reports whether this call created the row.
func (s *AssignmentService) CreateIfAbsent(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot, year int, mealID *uuid.UUID) (*models.MealAssignment, bool, error) {
	assignment := models.MealAssignment{
		UserID:   userID,
		MealDate: models.NormalizeDate(date),
		MealSlot: slot,
		Year:     year,
		MealID:   mealID,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "meal_date"}, {Name: "meal_slot"}, {Name: "year"},
		},
		DoNothing: true,
	}).Create(&assignment)
	if result.Error != nil {
		return nil, false, result.Error
	}
	created := result.RowsAffected > 0

	stored, err := s.FindAssignment(ctx, userID, date, slot, year)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, gorm.ErrRecordNotFound
	}
	return stored, created, nil
}

// FillGap sets the meal on a null-meal assignment row. If the row was filled
// concurrently the existing meal wins and is returned.
func (s *AssignmentService) FillGap(ctx context.Context, assignmentID uuid.UUID, mealID uuid.UUID) (*models.MealAssignment, error) {
	err := s.db.WithContext(ctx).Model(&models.MealAssignment{}).
		Where("id = ? AND meal_id IS NULL", assignmentID).
		Update("meal_id", mealID).Error
	if err != nil {
		return nil, err
	}

	var assignment models.MealAssignment
	if err := s.db.WithContext(ctx).Preload("Meal").First(&assignment, "id = ?", assignmentID).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// DeleteByYear hard-deletes the owner's assignments for the given year. Used
// by the generator's explicit regeneration reset.
func (s *AssignmentService) DeleteByYear(ctx context.Context, userID uuid.UUID, year int) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		Delete(&models.MealAssignment{}).Error
}

// ListForDate returns the user's assignments for one calendar day, ordered by
// the fixed slot order.
func (s *AssignmentService) ListForDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.MealAssignment, error) {
	var assignments []models.MealAssignment
	day := models.NormalizeDate(date)
	err := s.db.WithContext(ctx).Preload("Meal").
		Where("user_id = ? AND meal_date = ? AND year = ?", userID, day, day.Year()).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	order := map[models.MealSlot]int{}
	for i, slot := range models.AllMealSlots {
		order[slot] = i
	}
	sort.Slice(assignments, func(i, j int) bool {
		return order[assignments[i].MealSlot] < order[assignments[j].MealSlot]
	})
	return assignments, nil
}

// FeedbackUpdate carries the mutable feedback fields; nil pointers leave the
// stored value unchanged.
type FeedbackUpdate struct {
	Rating     *int
	IsFavorite *bool
	Notes      *string
}

func (s *AssignmentService) UpdateFeedback(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot, year int, update FeedbackUpdate) (*models.MealAssignment, error) {
	assignment, err := s.FindAssignment(ctx, userID, date, slot, year)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, gorm.ErrRecordNotFound
	}

	values := map[string]interface{}{}
	if update.Rating != nil {
		values["rating"] = *update.Rating
	}
	if update.IsFavorite != nil {
		values["is_favorite"] = *update.IsFavorite
	}
	if update.Notes != nil {
		values["notes"] = *update.Notes
	}
	if len(values) == 0 {
		return assignment, nil
	}

	err = s.db.WithContext(ctx).Model(&models.MealAssignment{}).
		Where("id = ?", assignment.ID).
		Updates(values).Error
	if err != nil {
		return nil, err
	}
	return s.FindAssignment(ctx, userID, date, slot, year)
}

// PlanStats summarizes one plan year.
type PlanStats struct {
	Year       int                      `json:"year"`
	Total      int64                    `json:"total"`
	Filled     int64                    `json:"filled"`
	GapCount   int64                    `json:"gap_count"`
	SlotCounts map[models.MealSlot]int64 `json:"slot_counts"`
}

func (s *AssignmentService) StatsForYear(ctx context.Context, userID uuid.UUID, year int) (*PlanStats, error) {
	stats := &PlanStats{Year: year, SlotCounts: map[models.MealSlot]int64{}}

	base := s.db.WithContext(ctx).Model(&models.MealAssignment{}).
		Where("user_id = ? AND year = ?", userID, year)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("meal_id IS NOT NULL").Count(&stats.Filled).Error; err != nil {
		return nil, err
	}
	stats.GapCount = stats.Total - stats.Filled

	for _, slot := range models.AllMealSlots {
		var count int64
		if err := base.Session(&gorm.Session{}).Where("meal_slot = ?", slot).Count(&count).Error; err != nil {
			return nil, err
		}
		stats.SlotCounts[slot] = count
	}
	return stats, nil
}

// ListGaps returns the year's unfilled assignment rows.
func (s *AssignmentService) ListGaps(ctx context.Context, userID uuid.UUID, year int) ([]models.MealAssignment, error) {
	var gaps []models.MealAssignment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND meal_id IS NULL", userID, year).
		Order("meal_date").
		Find(&gaps).Error
	return gaps, err
}
