package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Xcceleran-do/mindplex-api/internal/dbx"
	"github.com/Xcceleran-do/mindplex-api/internal/server/migrations"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/activationtokens"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/refreshtokens"
	"github.com/Xcceleran-do/mindplex-api/internal/server/repositories/users"
)

type PostgresRepositoryManager struct {
	db *sql.DB
}

func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresRepositoryManager{db: db}, nil
}

// InTx runs fn in a serializable transaction. Rotation's read-check-write
// sequence depends on this isolation level: of two concurrent rotations of
// the same row, one commits and the other fails with a serialization error
// the caller may retry.
func (m *PostgresRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	return dbx.WithTx(ctx, m.db, opts, fn)
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ActivationTokens(db dbx.DBTX) activationtokens.Repository {
	return activationtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
