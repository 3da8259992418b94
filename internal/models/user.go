package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a stored account: the GitHub username, the encrypted personal
// access token, and the session token last issued for it.
type User struct {
	ID           uuid.UUID
	Username     string
	EncryptedPAT string
	SessionToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(username, encryptedPAT string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		EncryptedPAT: encryptedPAT,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
