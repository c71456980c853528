package domain

import "time"

// User is a directory entry. Authentication treats it as read-only input:
// tokens are minted from a snapshot of these fields and never written back.
type User struct {
	ID           string
	Name         string
	PasswordHash string  // argon2 encoded
	Admin        bool
	Active       bool
	OTPSecret    *string // TOTP secret (nullable, base32 encoded)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
