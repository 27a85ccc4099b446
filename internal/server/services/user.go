package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/dbx"
	"github.com/Xcceleran-do/mindplex-api/internal/logging"
	"github.com/Xcceleran-do/mindplex-api/internal/server/auth"
	"github.com/Xcceleran-do/mindplex-api/internal/server/config"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/repomanager"
)

// UserService handles account registration, activation, and password login.
// Successful logins delegate session issuance to SessionService.
type UserService struct {
	store         repomanager.RepositoryManager
	sessions      *SessionService
	logger        logging.Logger
	activationTTL time.Duration
	now           func() time.Time
}

func NewUserService(store repomanager.RepositoryManager, sessions *SessionService, logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		store:         store,
		sessions:      sessions,
		logger:        logger.With("module", "users"),
		activationTTL: cfg.ActivationTokenTTL,
		now:           time.Now,
	}
}

// Register creates an inactive account and its activation token in one
// transaction. The raw activation token is returned for delivery to the
// user's mailbox; mail transport is owned elsewhere.
func (s *UserService) Register(ctx context.Context, username, email, password string) (string, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	rawToken, tokenHash := auth.GenerateOpaqueToken()

	err = s.store.InTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		user, err := s.store.Users(db).Create(ctx, &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: string(passwordHash),
		})
		if err != nil {
			return err
		}

		return s.store.ActivationTokens(db).Create(ctx, &models.ActivationToken{
			UserID:    user.ID,
			TokenHash: tokenHash,
			ExpiresAt: s.now().Add(s.activationTTL),
		})
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("creating account: %w", err)
	}

	return rawToken, nil
}

// Activate consumes an activation token. Expired tokens are pruned and
// rejected; activating an already-active account succeeds and still burns
// the token.
func (s *UserService) Activate(ctx context.Context, rawToken string) error {
	if !auth.WellFormedOpaque(rawToken) {
		return common.ErrInvalidToken
	}
	hash := auth.HashToken(rawToken)

	var outcome error
	err := s.store.InTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		tokens := s.store.ActivationTokens(db)

		token, err := tokens.FindByHash(ctx, hash)
		if errors.Is(err, common.ErrorNotFound) {
			outcome = common.ErrInvalidToken
			return nil
		}
		if err != nil {
			return err
		}

		if s.now().After(token.ExpiresAt) {
			outcome = common.ErrTokenExpired
			return tokens.Delete(ctx, token.ID)
		}

		if err := s.store.Users(db).Activate(ctx, token.UserID); err != nil {
			return err
		}
		return tokens.Delete(ctx, token.ID)
	})
	if err != nil {
		return fmt.Errorf("activating account: %w", err)
	}
	return outcome
}

// Login verifies primary credentials and opens a session. Unknown accounts
// and wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string, meta models.SessionMetadata) (*TokenPair, error) {
	user, err := s.store.Users(s.store.Conn()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if user.PasswordHash == "" {
		return nil, common.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	if !user.IsActivated {
		return nil, common.ErrAccountNotActivated
	}

	return s.sessions.Login(ctx, Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, meta)
}
