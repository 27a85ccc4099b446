// Package activationtokens declares the repository contract for single-use
// account-activation tokens.
package activationtokens

import (
	"context"

	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

type Repository interface {
	// Create inserts a new activation token and fills in its ID.
	Create(ctx context.Context, token *models.ActivationToken) error

	// FindByHash returns the token row for the given hash, or
	// common.ErrorNotFound.
	FindByHash(ctx context.Context, hash string) (*models.ActivationToken, error)

	// Delete removes a token row. Deleting a non-existent token is not an
	// error.
	Delete(ctx context.Context, id int64) error
}
