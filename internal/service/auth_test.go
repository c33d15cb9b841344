package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	auth := NewAuthService(db, "test-secret")

	token, err := auth.Register("Test User", "user@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Duplicate registration is rejected.
	_, err = auth.Register("Test User", "user@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserExists)

	// Stored password is hashed, never plaintext.
	var user models.User
	require.NoError(t, db.Where("email = ?", "user@example.com").First(&user).Error)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, err = auth.Login("user@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = auth.Login("user@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthValidateToken(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	auth := NewAuthService(db, "test-secret")

	token, err := auth.Register("Test User", "claims@example.com", "password123")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.Where("email = ?", "claims@example.com").First(&user).Error)
	assert.Equal(t, user.ID, claims.UserID)

	// Tokens signed with another secret are rejected.
	other := NewAuthService(db, "other-secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
