package activationtokens

import (
	"context"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

// MemoryRepository is a map-backed activation-token store used with the
// in-memory repository manager.
type MemoryRepository struct {
	nextID int64
	byHash map[string]*models.ActivationToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byHash: make(map[string]*models.ActivationToken)}
}

func (r *MemoryRepository) Create(_ context.Context, token *models.ActivationToken) error {
	r.nextID++
	token.ID = r.nextID
	clone := *token
	r.byHash[token.TokenHash] = &clone
	return nil
}

func (r *MemoryRepository) FindByHash(_ context.Context, hash string) (*models.ActivationToken, error) {
	token, ok := r.byHash[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *token
	return &clone, nil
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
