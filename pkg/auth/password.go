package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost       = 10 // matches the hashes already in the users table
	ResetTokenLength = 20
)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateResetToken returns a random reset token and its SHA-256 hash. The
// plain token goes into the email link; only the hash is persisted.
func GenerateResetToken() (plain, hash string, err error) {
	bytes := make([]byte, ResetTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	plain = hex.EncodeToString(bytes)
	hash = HashResetToken(plain)
	return plain, hash, nil
}

// HashResetToken hashes a plain reset token for storage or lookup.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
