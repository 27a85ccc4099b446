// Package common defines shared constants and sentinel errors used across
// the mindplex API layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Credential errors. Unknown account and wrong password share one value
	// so responses cannot reveal which check failed.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotActivated = errors.New("account not activated")

	// Token lifecycle errors. ErrInvalidToken covers unknown refresh hashes
	// and any access-token verification failure; ErrSessionExpired covers
	// both the idle window and the absolute family ceiling.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrSessionExpired = errors.New("session expired")

	// ErrTokenReuseDetected is returned when an already-rotated refresh
	// token is presented again. The whole token family is destroyed before
	// this is returned.
	ErrTokenReuseDetected = errors.New("token reuse detected")
)
