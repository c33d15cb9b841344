package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealSlot identifies one of the four meal slots of a day.
type MealSlot string

const (
	SlotBreakfast MealSlot = "BREAKFAST"
	SlotLunch     MealSlot = "LUNCH"
	SlotDinner    MealSlot = "DINNER"
	SlotSnack     MealSlot = "SNACK"
)

// AllMealSlots is the fixed slot iteration order used by the plan generator.
var AllMealSlots = []MealSlot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

// ParseMealSlot converts a string to a MealSlot, reporting whether it is valid.
func ParseMealSlot(s string) (MealSlot, bool) {
	switch MealSlot(s) {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack:
		return MealSlot(s), true
	}
	return "", false
}

// Diet types. DietMixed is the no-constraint default.
const (
	DietMixed         = "MIXED"
	DietVegetarian    = "VEGETARIAN"
	DietVegan         = "VEGAN"
	DietKeto          = "KETO"
	DietPaleo         = "PALEO"
	DietMediterranean = "MEDITERRANEAN"
)

// Difficulty levels.
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// Cooking skill levels.
const (
	SkillBeginner     = "BEGINNER"
	SkillIntermediate = "INTERMEDIATE"
	SkillAdvanced     = "ADVANCED"
)

// Meal is a catalog entry: either locally authored or cached from an external
// provider. When SourceProvider is set, ExternalID is set too and the pair is
// unique across the catalog.
type Meal struct {
	ID              uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	Name            string           `gorm:"size:255;not null" json:"name"`
	Description     string           `gorm:"type:text" json:"description"`
	Category        MealSlot         `gorm:"size:20;not null;index:idx_meals_category_diet" json:"category"`
	DietType        string           `gorm:"size:30;index:idx_meals_category_diet" json:"diet_type"`
	CuisineType     string           `gorm:"size:50" json:"cuisine_type"`
	DifficultyLevel string           `gorm:"size:20" json:"difficulty_level"`
	PrepTime        int              `json:"prep_time"`
	CookTime        int              `json:"cook_time"`
	Servings        int              `json:"servings"`
	Ingredients     JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions    JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Calories        *int             `json:"calories,omitempty"`
	Protein         *float64         `json:"protein,omitempty"`
	Carbs           *float64         `json:"carbs,omitempty"`
	Fat             *float64         `json:"fat,omitempty"`
	Fiber           *float64         `json:"fiber,omitempty"`
	Sugar           *float64         `json:"sugar,omitempty"`
	Sodium          *float64         `json:"sodium,omitempty"`
	ImageURL        string           `gorm:"size:512" json:"image_url"`
	SourceProvider  *string          `gorm:"size:30;uniqueIndex:idx_meals_provenance" json:"source_provider,omitempty"`
	ExternalID      *string          `gorm:"size:128;uniqueIndex:idx_meals_provenance" json:"external_id,omitempty"`
}

// BeforeCreate assigns a UUID so the model works on both postgres and sqlite.
func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TotalTime returns prep plus cook time in minutes.
func (m *Meal) TotalTime() int {
	return m.PrepTime + m.CookTime
}

// Provenance returns the external origin of the meal, if any.
func (m *Meal) Provenance() (provider, externalID string, ok bool) {
	if m.SourceProvider == nil || m.ExternalID == nil {
		return "", "", false
	}
	return *m.SourceProvider, *m.ExternalID, true
}
