package models

import "time"

// OneTimeCode is an ephemeral email verification artifact. Multiple codes may
// be outstanding for the same email; only the most recently created one is
// authoritative.
type OneTimeCode struct {
	ID        string
	Email     string
	Code      string // 6 digits, uniform in [100000, 999999]
	CreatedAt time.Time
}

// IsExpired reports whether the code is older than the given ttl.
func (c *OneTimeCode) IsExpired(ttl time.Duration, now time.Time) bool {
	return now.Sub(c.CreatedAt) > ttl
}
