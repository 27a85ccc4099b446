// Package users declares the repository contract for platform accounts.
package users

import (
	"context"

	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

type Repository interface {
	// Create inserts a new account and fills in its ID. A duplicate
	// username or email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the account for an email address, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the account by primary key, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// Activate marks an account as activated.
	Activate(ctx context.Context, id int64) error
}
