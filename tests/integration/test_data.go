package integration

import (
	"fmt"
	"strings"
	"time"
)

// TestCredentials generates unique test user credentials using a timestamp
func TestCredentials(suffix string) (username, email, password string) {
	ts := time.Now().UnixNano()
	username = fmt.Sprintf("test-%d-%s", ts, suffix)
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123!"
	return
}

// ExtractCodeFromEmail pulls the 6-digit code out of an OTP mail body.
// Body format: "Your verification code is: {code}. It expires in 5 minutes."
func ExtractCodeFromEmail(body string) string {
	const prefix = "Your verification code is: "
	idx := strings.Index(body, prefix)
	if idx < 0 || len(body) < idx+len(prefix)+6 {
		return ""
	}
	return body[idx+len(prefix) : idx+len(prefix)+6]
}

// ExtractResetTokenFromEmail pulls the plain token out of a reset-link mail.
func ExtractResetTokenFromEmail(body string) string {
	const marker = "/reset-password/"
	idx := strings.Index(body, marker)
	if idx < 0 {
		return ""
	}
	rest := body[idx+len(marker):]
	if end := strings.IndexAny(rest, " \n\t"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
