package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed payload of a bearer token. The subject is the
// user ID; username and position ride along so the frontend can render the
// session without a second request.
type SessionClaims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Position string `json:"position"`
	jwt.RegisteredClaims
}
