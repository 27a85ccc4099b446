// Package services contains the server-side business logic. This file
// implements SessionService, the refresh-token lifecycle manager: login
// issuance, atomic rotation, reuse detection, and logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/dbx"
	"github.com/Xcceleran-do/mindplex-api/internal/logging"
	"github.com/Xcceleran-do/mindplex-api/internal/server/auth"
	"github.com/Xcceleran-do/mindplex-api/internal/server/config"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived opaque
// refresh token. The refresh token is the raw secret: it is returned to the
// client exactly once and only its hash is stored.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is a verified user identity handed to the session manager by the
// primary-authentication layer.
type Identity struct {
	UserID int64
	Email  string
	Role   models.Role
}

// How often a rotation blocked by a concurrent transaction is retried.
// A retry that then finds the row revoked lands in the reuse branch.
const (
	rotateTxRetries = 3
	rotateTxBackoff = 25 * time.Millisecond
)

// SessionService manages refresh-token families. It holds no mutable state
// of its own; the store is the only shared resource and is reached through
// the manager's transactional contract.
type SessionService struct {
	store        repomanager.RepositoryManager
	issuer       *auth.TokenIssuer
	logger       logging.Logger
	idleWindow   time.Duration
	familyWindow time.Duration
	now          func() time.Time
}

// NewSessionService constructs a SessionService from explicit dependencies
// and server config.
func NewSessionService(store repomanager.RepositoryManager, issuer *auth.TokenIssuer, logger logging.Logger, cfg *config.Config) *SessionService {
	return &SessionService{
		store:        store,
		issuer:       issuer,
		logger:       logger.With("module", "sessions"),
		idleWindow:   cfg.RefreshIdleWindow,
		familyWindow: cfg.RefreshFamilyWindow,
		now:          time.Now,
	}
}

// Login opens a new session family for a verified identity: one unrevoked
// ledger row plus an access token carrying the fresh family id.
func (s *SessionService) Login(ctx context.Context, id Identity, meta models.SessionMetadata) (*TokenPair, error) {
	raw, hash := auth.GenerateOpaqueToken()
	familyID := uuid.NewString()
	now := s.now()

	access, err := s.issuer.Sign(id.UserID, id.Email, id.Role, familyID)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	record := &models.RefreshToken{
		UserID:          id.UserID,
		TokenHash:       hash,
		FamilyID:        familyID,
		Metadata:        meta,
		ExpiresAt:       now.Add(s.idleWindow),
		FamilyExpiresAt: now.Add(s.familyWindow),
	}

	err = s.store.InTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		return s.store.RefreshTokens(db).Create(ctx, record)
	})
	if err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: raw}, nil
}

// rotateOutcome tags the branch the in-transaction state machine took, so
// the caller maps it to an error after the transaction has committed.
// Returning branch decisions as transaction errors would roll back the
// family deletions that expiry and reuse must persist.
type rotateOutcome int

const (
	rotateOK rotateOutcome = iota
	rotateInvalid
	rotateExpired
	rotateReused
)

// Rotate exchanges a valid refresh token for a fresh token pair, revoking
// the presented one. A revoked token being presented again destroys the
// whole family and returns common.ErrTokenReuseDetected. Expiry of either
// window returns common.ErrSessionExpired; an unknown token returns
// common.ErrInvalidToken without revealing more.
func (s *SessionService) Rotate(ctx context.Context, rawToken string) (*TokenPair, error) {
	if !auth.WellFormedOpaque(rawToken) {
		return nil, common.ErrInvalidToken
	}
	hash := auth.HashToken(rawToken)

	var (
		outcome      rotateOutcome
		pair         *TokenPair
		reusedUserID int64
	)

	backoff := retry.WithMaxRetries(rotateTxRetries, retry.NewConstant(rotateTxBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.store.InTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
			var txErr error
			outcome, pair, reusedUserID, txErr = s.rotateTx(ctx, db, hash)
			return txErr
		})
		if dbx.IsSerializationFailure(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rotating refresh token: %w", err)
	}

	switch outcome {
	case rotateInvalid:
		return nil, common.ErrInvalidToken
	case rotateExpired:
		return nil, common.ErrSessionExpired
	case rotateReused:
		s.logger.Warn(ctx, "refresh token reuse detected, session family terminated", "user_id", reusedUserID)
		return nil, common.ErrTokenReuseDetected
	default:
		return pair, nil
	}
}

// rotateTx is the read-check-write sequence of one rotation attempt. It
// runs entirely inside the caller's transaction; the row lock taken by
// FindByHashForUpdate holds until commit.
func (s *SessionService) rotateTx(ctx context.Context, db dbx.DBTX, hash string) (rotateOutcome, *TokenPair, int64, error) {
	repo := s.store.RefreshTokens(db)

	record, err := repo.FindByHashForUpdate(ctx, hash)
	if errors.Is(err, common.ErrorNotFound) {
		// Forged, rotated away long ago, or deleted on logout; the caller
		// must not be able to tell which.
		return rotateInvalid, nil, 0, nil
	}
	if err != nil {
		return 0, nil, 0, err
	}

	now := s.now()
	switch {
	case now.After(record.FamilyExpiresAt):
		// Hard ceiling: no rotation extends a session past it.
		return rotateExpired, nil, 0, repo.DeleteFamily(ctx, record.FamilyID)
	case now.After(record.ExpiresAt):
		// Idle timeout. The row is useless now, so prune it; the rest of
		// the chain is already revoked and ages out with the family.
		return rotateExpired, nil, 0, repo.Delete(ctx, record.ID)
	case record.IsRevoked:
		// Theft containment: a stolen-then-rotated token and a client
		// racing its own rotation both collapse the whole chain here.
		return rotateReused, nil, record.UserID, repo.DeleteFamily(ctx, record.FamilyID)
	}

	user, err := s.store.Users(db).GetByID(ctx, record.UserID)
	if err != nil {
		return 0, nil, 0, err
	}

	if err := repo.Revoke(ctx, record.ID); err != nil {
		return 0, nil, 0, err
	}

	rawNext, hashNext := auth.GenerateOpaqueToken()
	next := &models.RefreshToken{
		UserID:          record.UserID,
		TokenHash:       hashNext,
		FamilyID:        record.FamilyID,
		Metadata:        record.Metadata,
		ExpiresAt:       now.Add(s.idleWindow),
		FamilyExpiresAt: record.FamilyExpiresAt,
	}
	if err := repo.Create(ctx, next); err != nil {
		return 0, nil, 0, err
	}

	access, err := s.issuer.Sign(user.ID, user.Email, user.Role, record.FamilyID)
	if err != nil {
		return 0, nil, 0, err
	}

	return rotateOK, &TokenPair{AccessToken: access, RefreshToken: rawNext}, 0, nil
}

// Logout destroys the whole family of the presented refresh token. The
// token does not have to be live: logging out with a stale or rotated
// token still terminates the session chain. Unknown tokens are a no-op
// success, which makes logout idempotent.
func (s *SessionService) Logout(ctx context.Context, rawToken string) error {
	if !auth.WellFormedOpaque(rawToken) {
		return nil
	}
	hash := auth.HashToken(rawToken)

	err := s.store.InTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		repo := s.store.RefreshTokens(db)

		record, err := repo.FindByHash(ctx, hash)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return repo.DeleteFamily(ctx, record.FamilyID)
	})
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}
