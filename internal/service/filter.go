package service

import (
	"strings"

	"github.com/pageza/mealplanner/backend/internal/models"
)

// The preference filter is a pure, order-independent predicate composition.
// Every predicate admits the meal when the corresponding preference field is
// unset: absence of a constraint is never a rejection.

// MealHasAllergen reports whether any allergy token appears in the meal's
// ingredient text (case-insensitive substring match).
func MealHasAllergen(meal *models.Meal, prefs *models.UserPreferences) bool {
	if prefs == nil || len(prefs.Allergies) == 0 {
		return false
	}
	ingredients := strings.ToLower(strings.Join(meal.Ingredients, " "))
	for _, allergen := range prefs.Allergies {
		token := strings.ToLower(strings.TrimSpace(allergen))
		if token != "" && strings.Contains(ingredients, token) {
			return true
		}
	}
	return false
}

// MealHasDislike reports whether any dislike token appears in the meal's name
// or ingredient text.
func MealHasDislike(meal *models.Meal, prefs *models.UserPreferences) bool {
	if prefs == nil || len(prefs.Dislikes) == 0 {
		return false
	}
	text := strings.ToLower(meal.Name + " " + strings.Join(meal.Ingredients, " "))
	for _, dislike := range prefs.Dislikes {
		token := strings.ToLower(strings.TrimSpace(dislike))
		if token != "" && strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// MealOverCalorieBudget reports whether the meal exceeds the per-meal calorie
// ceiling: dailyTarget / mealsPerDay, with the given slack factor. Meals with
// unknown calories pass.
func MealOverCalorieBudget(meal *models.Meal, prefs *models.UserPreferences, mealsPerDay int, slack float64) bool {
	if prefs == nil || prefs.DailyCalorieTarget == nil || meal.Calories == nil {
		return false
	}
	ceiling := float64(*prefs.DailyCalorieTarget) / float64(mealsPerDay) * slack
	return float64(*meal.Calories) > ceiling
}

// MealBeyondSkill reports whether the meal's difficulty exceeds the user's
// cooking skill. BEGINNER admits only an explicit EASY rating, so unrated
// meals are held back too; INTERMEDIATE excludes HARD; ADVANCED and
// unspecified skill admit everything. Unrated meals can still reach a
// beginner through the relaxation stages, which drop this gate.
func MealBeyondSkill(meal *models.Meal, prefs *models.UserPreferences) bool {
	if prefs == nil || prefs.CookingSkillLevel == "" {
		return false
	}
	switch prefs.CookingSkillLevel {
	case models.SkillBeginner:
		return meal.DifficultyLevel != models.DifficultyEasy
	case models.SkillIntermediate:
		return meal.DifficultyLevel == models.DifficultyHard
	default:
		return false
	}
}

// FilterMeals applies all four preference predicates.
func FilterMeals(meals []models.Meal, prefs *models.UserPreferences, mealsPerDay int, slack float64) []models.Meal {
	out := make([]models.Meal, 0, len(meals))
	for i := range meals {
		m := &meals[i]
		if MealHasAllergen(m, prefs) || MealHasDislike(m, prefs) ||
			MealOverCalorieBudget(m, prefs, mealsPerDay, slack) || MealBeyondSkill(m, prefs) {
			continue
		}
		out = append(out, meals[i])
	}
	return out
}

// FilterMealsRelaxed keeps the allergy and calorie predicates but drops
// dislikes and the skill gate. Used as the first relaxation stage when the
// full filter removes every candidate.
func FilterMealsRelaxed(meals []models.Meal, prefs *models.UserPreferences, mealsPerDay int, slack float64) []models.Meal {
	out := make([]models.Meal, 0, len(meals))
	for i := range meals {
		m := &meals[i]
		if MealHasAllergen(m, prefs) || MealOverCalorieBudget(m, prefs, mealsPerDay, slack) {
			continue
		}
		out = append(out, meals[i])
	}
	return out
}

// FilterAllergySafe drops only allergy-violating meals. The allergy exclusion
// is a hard constraint: even the soft-fail path never serves a meal whose
// ingredients contain an allergy token.
func FilterAllergySafe(meals []models.Meal, prefs *models.UserPreferences) []models.Meal {
	out := make([]models.Meal, 0, len(meals))
	for i := range meals {
		if MealHasAllergen(&meals[i], prefs) {
			continue
		}
		out = append(out, meals[i])
	}
	return out
}
