package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "name", "email", "password_hash", "role", "avatar_url", "reset_token_hash", "reset_token_expiry", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func userRow(id, email string) *sqlmock.Rows {
	return sqlmock.NewRows(columns).
		AddRow(id, "Alice", email, "$2a$hash", "user", "", nil, nil, time.Unix(100, 0))
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	created := time.Unix(1000, 0)
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*password_hash,\s*role,\s*avatar_url\).*RETURNING\s+created_at$`).
		WithArgs("u-1", "Alice", "a@x.io", "$2a$hash", "user", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &models.User{ID: "u-1", Name: "Alice", Email: "a@x.io", PasswordHash: "$2a$hash", Role: models.RoleUser}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1", Email: "a@x.io", Role: models.RoleUser})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1", Role: models.RoleUser})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`).
		WithArgs("a@x.io").
		WillReturnRows(userRow("u-1", "a@x.io"))

	got, err := repo.GetByEmail(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Nil(t, got.ResetTokenHash)
	assert.Nil(t, got.ResetTokenExpiry)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE id = \$1`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_InvalidUUIDIsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE id = \$1`).WithArgs("nope").WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_ScansResetPair(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	exp := time.Unix(5000, 0)
	rows := sqlmock.NewRows(columns).
		AddRow("u-1", "Alice", "a@x.io", "h", "admin", "http://a/1.png", "digest", exp, time.Unix(1, 0))
	mock.ExpectQuery(`WHERE id = \$1`).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, "http://a/1.png", got.AvatarURL)
	require.NotNil(t, got.ResetTokenHash)
	assert.Equal(t, "digest", *got.ResetTokenHash)
	require.NotNil(t, got.ResetTokenExpiry)
	assert.True(t, exp.Equal(*got.ResetTokenExpiry))
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows(columns).
		AddRow("u-1", "A", "a@x.io", "h", "user", "", nil, nil, time.Unix(1, 0)).
		AddRow("u-2", "B", "b@x.io", "h", "admin", "", nil, nil, time.Unix(2, 0))
	mock.ExpectQuery(`ORDER BY created_at`).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u-2", got[1].ID)
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+name`).
		WithArgs("u-1", "Alice", "taken@x.io", nil, nil).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.UpdateProfile(context.Background(), "u-1", ProfilePatch{Name: strPtr("Alice"), Email: strPtr("taken@x.io")})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestUpdateProfile_PasswordInSameStatement(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET.*email\s*=\s*COALESCE\(\$3,\s*email\).*password_hash\s*=\s*COALESCE\(\$5,\s*password_hash\).*WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1", nil, "new@x.io", nil, "$2a$new").
		WillReturnRows(userRow("u-1", "new@x.io"))

	got, err := repo.UpdateProfile(context.Background(), "u-1", ProfilePatch{Email: strPtr("new@x.io"), PasswordHash: strPtr("$2a$new")})
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", got.Email)
}

func TestUpdatePassword(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`UPDATE users SET password_hash = \$2 WHERE id = \$1`).
			WithArgs("u-1", "newhash").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.UpdatePassword(context.Background(), "u-1", "newhash"))
	})

	t.Run("missing user", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`UPDATE users SET password_hash`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "u-9", "h"), common.ErrorNotFound)
	})
}

func TestUpdateRoleAndDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE users SET role = \$2 WHERE id = \$1`).
		WithArgs("u-1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateRole(context.Background(), "u-1", models.RoleAdmin))
	require.NoError(t, repo.Delete(context.Background(), "u-1"))
}

func TestSetAndClearResetToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	exp := time.Unix(3600, 0)
	mock.ExpectExec(`UPDATE users SET reset_token_hash = \$2, reset_token_expiry = \$3 WHERE id = \$1`).
		WithArgs("u-1", "digest", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET reset_token_hash = NULL, reset_token_expiry = NULL WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetResetToken(context.Background(), "u-1", "digest", exp))
	require.NoError(t, repo.ClearResetToken(context.Background(), "u-1"))
}

func TestGetByResetToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Unix(10, 0)
	mock.ExpectQuery(`WHERE reset_token_hash = \$1 AND reset_token_expiry > \$2`).
		WithArgs("digest", now).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByResetToken(context.Background(), "digest", now)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestConsumeResetToken_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Unix(10, 0)
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT id FROM users WHERE reset_token_hash = \$1 AND reset_token_expiry > \$2 FOR UPDATE`).
		WithArgs("digest", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))
	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,\s*reset_token_hash\s*=\s*NULL,\s*reset_token_expiry\s*=\s*NULL`).
		WithArgs("u-1", "newhash").
		WillReturnRows(userRow("u-1", "a@x.io"))
	mock.ExpectCommit()

	got, err := repo.ConsumeResetToken(context.Background(), "digest", now, "newhash")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
}

func TestConsumeResetToken_NoMatchRollsBack(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.ConsumeResetToken(context.Background(), "digest", time.Unix(10, 0), "newhash")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
