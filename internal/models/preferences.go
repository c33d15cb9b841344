package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPreferences holds one user's dietary constraints. A user without a row
// is treated as having DefaultPreferences.
type UserPreferences struct {
	ID                 uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID             uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	DietType           string           `gorm:"size:30;not null;default:'MIXED'" json:"diet_type"`
	DailyCalorieTarget *int             `json:"daily_calorie_target,omitempty"`
	CookingSkillLevel  string           `gorm:"size:20" json:"cooking_skill_level"`
	PreferredCuisines  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"preferred_cuisines"`
	Allergies          JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	Dislikes           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dislikes"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (p *UserPreferences) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DefaultPreferences is the no-constraint fallback used when a user has not
// saved any preferences.
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{DietType: DietMixed}
}
