package auth

import (
	"fmt"
	"time"

	"github.com/ghostofweb/portfolio-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager mints and verifies the signed bearer tokens that represent an
// authenticated session.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Generate signs a session token embedding the user's id, username and
// position. Username and position are re-embedded on profile updates, so a
// fresh token must be minted whenever either changes.
func (tm *TokenManager) Generate(user *models.User) (string, error) {
	now := time.Now()

	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Position: user.Position,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies a token's signature and expiry and returns its claims.
func (tm *TokenManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	return claims, nil
}
