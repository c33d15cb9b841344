package api

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PreferencesRequest carries a user's dietary preferences.
type PreferencesRequest struct {
	DietType           string   `json:"diet_type"`
	DailyCalorieTarget *int     `json:"daily_calorie_target"`
	CookingSkillLevel  string   `json:"cooking_skill_level"`
	PreferredCuisines  []string `json:"preferred_cuisines"`
	Allergies          []string `json:"allergies"`
	Dislikes           []string `json:"dislikes"`
}

// GeneratePlanRequest triggers annual plan generation. Personalized plans are
// scoped to the requesting user; otherwise the shared global plan is rebuilt.
type GeneratePlanRequest struct {
	Year         int  `json:"year" binding:"required"`
	Personalized bool `json:"personalized"`
}

// FeedbackRequest updates the mutable feedback fields of an assignment.
type FeedbackRequest struct {
	Date       string  `json:"date" binding:"required"`
	Slot       string  `json:"slot" binding:"required"`
	Rating     *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	IsFavorite *bool   `json:"is_favorite"`
	Notes      *string `json:"notes"`
}
