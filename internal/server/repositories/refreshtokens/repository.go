// Package refreshtokens declares the repository contract for the
// refresh-token ledger: one row per issuance, keyed by token hash and
// grouped into rotation families.
package refreshtokens

import (
	"context"

	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

// Repository defines the storage operations the session lifecycle needs.
// Every method is usable with a transactional handle; the rotation sequence
// relies on being executed inside one transaction.
type Repository interface {
	// Create inserts a new, unrevoked ledger row and fills in its ID.
	Create(ctx context.Context, token *models.RefreshToken) error

	// FindByHash returns the unique row for the given token hash, or
	// common.ErrorNotFound.
	FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error)

	// FindByHashForUpdate is FindByHash with an exclusive row lock, held
	// for the duration of the enclosing transaction. Two concurrent
	// rotations of the same row serialize here.
	FindByHashForUpdate(ctx context.Context, hash string) (*models.RefreshToken, error)

	// Revoke marks a single row as revoked.
	Revoke(ctx context.Context, id int64) error

	// Delete removes a single row.
	Delete(ctx context.Context, id int64) error

	// DeleteFamily removes every row of a rotation family.
	DeleteFamily(ctx context.Context, familyID string) error
}
