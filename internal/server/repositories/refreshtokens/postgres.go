package refreshtokens

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/dbx"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

// PostgresRepository implements the refresh-token ledger over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	meta, err := json.Marshal(token.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, family_id, metadata, expires_at, family_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		token.UserID, token.TokenHash, token.FamilyID, meta, token.ExpiresAt, token.FamilyExpiresAt,
	).Scan(&token.ID, &token.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const selectColumns = `id, user_id, token_hash, family_id, is_revoked, metadata, expires_at, family_expires_at, created_at`

func (r *PostgresRepository) find(ctx context.Context, query, hash string) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	var meta []byte

	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.FamilyID, &token.IsRevoked,
		&meta, &token.ExpiresAt, &token.FamilyExpiresAt, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &token.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	return token, nil
}

func (r *PostgresRepository) FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	return r.find(ctx, query, hash)
}

func (r *PostgresRepository) FindByHashForUpdate(ctx context.Context, hash string) (*models.RefreshToken, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM refresh_tokens
		WHERE token_hash = $1
		FOR UPDATE
	`
	return r.find(ctx, query, hash)
}

func (r *PostgresRepository) Revoke(ctx context.Context, id int64) error {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = TRUE
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteFamily(ctx context.Context, familyID string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE family_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, familyID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
