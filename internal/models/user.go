package models

import (
	"time"
)

type User struct {
	ID                  string
	Username            string // unique, compared verbatim
	Name                string
	Position            string
	Email               string // unique, stored lowercase
	PasswordHash        string
	IsMaster            bool       // exempt from removal, may manage members
	ResetTokenHash      *string    // SHA-256 of the reset link token
	ResetTokenExpiresAt *time.Time // at most 10 minutes after issuance
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
