package models

import "time"

// SessionMetadata is informational context captured when a refresh token is
// issued. It never participates in any validation decision.
type SessionMetadata struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// RefreshToken is one row of the refresh-token ledger: a single issuance
// within a rotation family. Only the SHA-256 hash of the opaque secret is
// ever stored.
//
// All rows of one family share UserID and FamilyExpiresAt; at most one row
// per family is unrevoked and unexpired at any instant.
type RefreshToken struct {
	ID              int64
	UserID          int64
	TokenHash       string
	FamilyID        string
	IsRevoked       bool
	Metadata        SessionMetadata
	ExpiresAt       time.Time
	FamilyExpiresAt time.Time
	CreatedAt       time.Time
}
