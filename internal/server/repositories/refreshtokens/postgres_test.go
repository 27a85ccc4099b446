package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Xcceleran-do/mindplex-api/internal/common"
	"github.com/Xcceleran-do/mindplex-api/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleToken() *models.RefreshToken {
	now := time.Now()
	return &models.RefreshToken{
		UserID:          42,
		TokenHash:       "hash-1",
		FamilyID:        "fam-1",
		Metadata:        models.SessionMetadata{IP: "10.0.0.1", UserAgent: "ua"},
		ExpiresAt:       now.Add(7 * 24 * time.Hour),
		FamilyExpiresAt: now.Add(30 * 24 * time.Hour),
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\).*RETURNING\s+id,\s*created_at\s*$`

	created := time.Now()
	mock.ExpectQuery(q).
		WithArgs(int64(42), "hash-1", "fam-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	token := sampleToken()
	if err := repo.Create(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.ID != 7 {
		t.Fatalf("expected assigned id 7, got %d", token.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+refresh_tokens`).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), sampleToken())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func tokenRows(token *models.RefreshToken) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "token_hash", "family_id", "is_revoked",
		"metadata", "expires_at", "family_expires_at", "created_at",
	}).AddRow(
		token.ID, token.UserID, token.TokenHash, token.FamilyID, token.IsRevoked,
		[]byte(`{"ip":"10.0.0.1","user_agent":"ua"}`), token.ExpiresAt, token.FamilyExpiresAt, token.CreatedAt,
	)
}

func TestFindByHash_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := sampleToken()
	want.ID = 3
	want.CreatedAt = time.Now()

	q := `(?s)^\s*SELECT\s+.*FROM\s+refresh_tokens\s+WHERE\s+token_hash\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("hash-1").WillReturnRows(tokenRows(want))

	got, err := repo.FindByHash(context.Background(), "hash-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 3 || got.FamilyID != "fam-1" || got.UserID != 42 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.Metadata.IP != "10.0.0.1" {
		t.Fatalf("metadata not decoded: %+v", got.Metadata)
	}
}

func TestFindByHashForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := sampleToken()
	want.ID = 3

	q := `(?s)^\s*SELECT\s+.*FROM\s+refresh_tokens\s+WHERE\s+token_hash\s*=\s*\$1\s+FOR\s+UPDATE\s*$`
	mock.ExpectQuery(q).WithArgs("hash-1").WillReturnRows(tokenRows(want))

	if _, err := repo.FindByHashForUpdate(context.Background(), "hash-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByHash_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+refresh_tokens`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByHash(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+refresh_tokens\s+SET\s+is_revoked\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectExec(q).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectExec(q).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteFamily(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+family_id\s*=\s*\$1\s*$`
	mock.ExpectExec(q).WithArgs("fam-1").WillReturnResult(sqlmock.NewResult(0, 4))

	if err := repo.DeleteFamily(context.Background(), "fam-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteFamily_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+refresh_tokens`).
		WithArgs("fam-1").
		WillReturnError(errors.New("db err"))

	err := repo.DeleteFamily(context.Background(), "fam-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
