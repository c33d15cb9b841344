package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/mealplanner/backend/internal/models"
)

// PreferencesService is the gorm-backed PreferencesProvider plus the upsert
// surface the preferences API exposes.
type PreferencesService struct {
	db *gorm.DB
}

func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// GetPreferences returns (nil, nil) when the user has no saved preferences;
// callers apply defaults.
func (s *PreferencesService) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpsertPreferences creates or replaces the user's preference row.
func (s *PreferencesService) UpsertPreferences(ctx context.Context, userID uuid.UUID, prefs *models.UserPreferences) (*models.UserPreferences, error) {
	prefs.UserID = userID
	if prefs.DietType == "" {
		prefs.DietType = models.DietMixed
	}

	existing, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if err := s.db.WithContext(ctx).Create(prefs).Error; err != nil {
			return nil, err
		}
		return prefs, nil
	}

	prefs.ID = existing.ID
	prefs.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}
