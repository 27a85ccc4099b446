package users

import (
	"context"
	"time"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

// MemoryRepository is a map-backed account store used with the in-memory
// repository manager. Synchronization is provided by the manager's
// transaction lock.
type MemoryRepository struct {
	nextID int64
	byID   map[int64]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]*models.User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	for _, existing := range r.byID {
		if existing.Email == user.Email || existing.Username == user.Username {
			return nil, common.ErrorAlreadyExists
		}
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.byID[user.ID] = &clone
	return user, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *MemoryRepository) Activate(_ context.Context, id int64) error {
	user, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	user.IsActivated = true
	user.UpdatedAt = time.Now()
	return nil
}
