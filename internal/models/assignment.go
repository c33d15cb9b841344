package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealAssignment materializes the chosen meal for one (user, date, slot, year).
// MealID is null for gap rows the plan generator records when no candidate
// could be found. Rows are hard-deleted on year regeneration; a soft-delete
// column would collide with the unique index on re-creation.
type MealAssignment struct {
	ID         uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_assignments_key" json:"user_id"`
	MealDate   time.Time  `gorm:"type:date;not null;uniqueIndex:idx_assignments_key" json:"meal_date"`
	MealSlot   MealSlot   `gorm:"size:20;not null;uniqueIndex:idx_assignments_key" json:"meal_slot"`
	Year       int        `gorm:"not null;uniqueIndex:idx_assignments_key;index" json:"year"`
	MealID     *uuid.UUID `gorm:"type:varchar(36)" json:"meal_id,omitempty"`
	Meal       *Meal      `gorm:"foreignKey:MealID" json:"meal,omitempty"`
	Rating     *int       `gorm:"check:rating >= 1 AND rating <= 5" json:"rating,omitempty"`
	IsFavorite bool       `gorm:"not null;default:false" json:"is_favorite"`
	Notes      string     `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (a *MealAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NormalizeDate truncates a timestamp to its calendar day in UTC so the
// assignment key is stable regardless of the caller's clock or zone.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
