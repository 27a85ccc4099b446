package models

import "time"

// ActivationToken is a single-use, hashed account-activation secret issued
// at registration.
type ActivationToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
