package auth

import (
	"testing"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:       "user-123",
		Username: "alice",
		Name:     "Alice",
		Position: "Writer",
		Email:    "alice@example.com",
	}
}

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", 7*24*time.Hour)

	token, err := tm.Generate(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Writer", claims.Position)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestTokenManager_SevenDayExpiry(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", 7*24*time.Hour)

	token, err := tm.Generate(testUser())
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), remaining.Seconds(), 60)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", -1*time.Minute)

	token, err := tm.Generate(testUser())
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", time.Hour)
	other := NewTokenManager("another-secret-entirely", time.Hour)

	token, err := tm.Generate(testUser())
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", time.Hour)

	_, err := tm.Validate("not-a-jwt")
	assert.Error(t, err)
}

func TestTokenManager_RejectsUnsignedToken(t *testing.T) {
	tm := NewTokenManager("test-secret-at-least-16", time.Hour)

	claims := &models.SessionClaims{
		UserID:   "user-123",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Validate(tokenString)
	assert.Error(t, err)
}
