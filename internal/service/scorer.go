package service

import (
	"github.com/pageza/mealplanner/backend/internal/models"
)

// ScoreWeights are the relevance-scoring constants. They are heuristics, not
// law, so they live in configuration rather than as literals in the scorer.
type ScoreWeights struct {
	Base             int
	CuisineMatch     int
	DietMatch        int
	QuickPrep        int
	QuickPrepMinutes int
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Base:             10,
		CuisineMatch:     20,
		DietMatch:        15,
		QuickPrep:        10,
		QuickPrepMinutes: 30,
	}
}

// ScoreMeal computes the deterministic relevance of a meal for the given
// preferences. No randomness: ties are broken elsewhere by lowest catalog id.
func ScoreMeal(meal *models.Meal, prefs *models.UserPreferences, w ScoreWeights) int {
	score := w.Base
	if prefs == nil {
		return score
	}
	for _, cuisine := range prefs.PreferredCuisines {
		if cuisine != "" && cuisine == meal.CuisineType {
			score += w.CuisineMatch
			break
		}
	}
	if prefs.DietType != "" && prefs.DietType == meal.DietType {
		score += w.DietMatch
	}
	if meal.TotalTime() > 0 && meal.TotalTime() < w.QuickPrepMinutes {
		score += w.QuickPrep
	}
	return score
}
