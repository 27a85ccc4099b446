// Package repomanager wires the per-aggregate repositories to a shared
// storage backend and owns the transaction boundary the session lifecycle
// depends on.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/Xcceleran-do/mindplex-api/internal/dbx"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/activationtokens"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/refreshtokens"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a handle and runs
// all-or-nothing transactions over them.
type RepositoryManager interface {
	// InTx runs fn inside a single transaction and commits iff fn returns
	// nil. The fn receives the transactional handle to bind repositories
	// to. Implementations provide at least serializable-equivalent
	// isolation for concurrent calls touching the same rows.
	InTx(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error

	// Conn returns the non-transactional handle for single-statement use.
	Conn() *sql.DB

	RunMigrations(ctx context.Context) error

	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ActivationTokens(db dbx.DBTX) activationtokens.Repository
}
