// Package auth implements the credential primitives of the API: signed
// access tokens and opaque refresh/activation token generation.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

// MinSecretLen is the minimum accepted HMAC secret length in bytes.
// Shorter keys are rejected at startup.
const MinSecretLen = 32

// Claims is the self-contained payload of an access token. SessionID carries
// the refresh-token family that minted the token, so every access token can
// be traced back to its session chain.
type Claims struct {
	jwt.RegisteredClaims
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	SessionID string      `json:"sessionId"`
}

// UserID returns the numeric subject of the claims.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenIssuer signs and verifies access tokens. It is immutable after
// construction and safe for concurrent use.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenIssuer validates the signing secret and returns an issuer with a
// fixed issuer/audience pair and access-token lifetime.
func NewTokenIssuer(secret []byte, issuer, audience string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < MinSecretLen {
		return nil, errors.New("auth: signing secret is shorter than 32 bytes")
	}
	if issuer == "" || audience == "" {
		return nil, errors.New("auth: issuer and audience must be set")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: access token lifetime must be positive")
	}
	return &TokenIssuer{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Sign produces a compact HS256 token for the given identity and
// refresh-token family.
func (i *TokenIssuer) Sign(userID int64, email string, role models.Role, familyID string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email:     email,
		Role:      role,
		SessionID: familyID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates a token. Signature, issuer, audience, expiry
// and structural failures all collapse into common.ErrInvalidToken so the
// response cannot reveal which check failed.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
