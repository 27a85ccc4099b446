package refreshtokens

import (
	"context"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

// MemoryRepository is a map-backed ledger used with the in-memory repository
// manager. Synchronization is provided by the manager's transaction lock,
// not here.
type MemoryRepository struct {
	nextID int64
	byHash map[string]*models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byHash: make(map[string]*models.RefreshToken)}
}

func (r *MemoryRepository) Create(_ context.Context, token *models.RefreshToken) error {
	if _, ok := r.byHash[token.TokenHash]; ok {
		return common.ErrorAlreadyExists
	}
	r.nextID++
	token.ID = r.nextID
	clone := *token
	r.byHash[token.TokenHash] = &clone
	return nil
}

func (r *MemoryRepository) FindByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	token, ok := r.byHash[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *token
	return &clone, nil
}

func (r *MemoryRepository) FindByHashForUpdate(ctx context.Context, hash string) (*models.RefreshToken, error) {
	return r.FindByHash(ctx, hash)
}

func (r *MemoryRepository) Revoke(_ context.Context, id int64) error {
	for _, token := range r.byHash {
		if token.ID == id {
			token.IsRevoked = true
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	for hash, token := range r.byHash {
		if token.ID == id {
			delete(r.byHash, hash)
			return nil
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteFamily(_ context.Context, familyID string) error {
	for hash, token := range r.byHash {
		if token.FamilyID == familyID {
			delete(r.byHash, hash)
		}
	}
	return nil
}

// Len reports the number of stored rows. Test helper.
func (r *MemoryRepository) Len() int {
	return len(r.byHash)
}
