package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an application user. The email is the principal identifier
// used for file ownership and share grants.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// SafeUser removes sensitive fields for response payloads.
func (u User) SafeUser() User {
	u.PasswordHash = ""
	return u
}
