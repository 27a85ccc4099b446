package repomanager

import (
	"context"
	"database/sql"
	"sync"

	"github.com/Xcceleran-do/mindplex-api/internal/dbx"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/activationtokens"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/refreshtokens"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/users"
)

// InMemoryRepositoryManager backs the repositories with maps and a single
// mutex standing in for the database's transaction isolation. It exists so
// the services can be exercised without PostgreSQL; do not use it to serve
// traffic.
type InMemoryRepositoryManager struct {
	mu               sync.Mutex
	users            *users.MemoryRepository
	refreshTokens    *refreshtokens.MemoryRepository
	activationTokens *activationtokens.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:            users.NewMemoryRepository(),
		refreshTokens:    refreshtokens.NewMemoryRepository(),
		activationTokens: activationtokens.NewMemoryRepository(),
	}
}

// InTx serializes callbacks under one lock. Changes are applied directly,
// so a failing fn does not roll anything back; tests that need rollback
// semantics assert on outcomes, not intermediate state.
func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(_ dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens(_ dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) ActivationTokens(_ dbx.DBTX) activationtokens.Repository {
	return m.activationTokens
}

// RefreshTokenCount reports the number of stored ledger rows. Test helper.
func (m *InMemoryRepositoryManager) RefreshTokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshTokens.Len()
}
