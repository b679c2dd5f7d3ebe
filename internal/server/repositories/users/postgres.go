package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/dbx"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02"
)

const userColumns = `id, name, email, password_hash, role, avatar_url, reset_token_hash, reset_token_expiry, created_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, name, email, password_hash, role, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.AvatarURL).Scan(&user.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return queryOne(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return queryOne(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// UpdateProfile keeps a column as stored when its patch field is nil.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error) {
	query :=
		`UPDATE users SET
		   name = COALESCE($2, name),
		   email = COALESCE($3, email),
		   avatar_url = COALESCE($4, avatar_url),
		   password_hash = COALESCE($5, password_hash)
		 WHERE id = $1
		 RETURNING ` + userColumns

	return queryOne(ctx, r.db, query, id, patch.Name, patch.Email, patch.AvatarURL, patch.PasswordHash)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return execOne(ctx, r.db, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return execOne(ctx, r.db, `UPDATE users SET role = $2 WHERE id = $1`, id, string(role))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	return execOne(ctx, r.db,
		`UPDATE users SET reset_token_hash = $2, reset_token_expiry = $3 WHERE id = $1`,
		id, tokenHash, expiry)
}

func (r *PostgresRepository) ClearResetToken(ctx context.Context, id string) error {
	return execOne(ctx, r.db,
		`UPDATE users SET reset_token_hash = NULL, reset_token_expiry = NULL WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return queryOne(ctx, r.db,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1 AND reset_token_expiry > $2`,
		tokenHash, now)
}

// ConsumeResetToken locks the matching row before rewriting it. A second
// transaction waiting on the lock re-reads the row after the first commits,
// finds the digest gone and matches nothing.
func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	var user *models.User

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var id string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM users WHERE reset_token_hash = $1 AND reset_token_expiry > $2 FOR UPDATE`,
			tokenHash, now).Scan(&id)
		if err != nil {
			return mapError(err)
		}

		user, err = queryOne(ctx, tx,
			`UPDATE users SET password_hash = $2, reset_token_hash = NULL, reset_token_expiry = NULL
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, passwordHash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u      models.User
		role   string
		hash   sql.NullString
		expiry sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.AvatarURL, &hash, &expiry, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	if hash.Valid && expiry.Valid {
		h, e := hash.String, expiry.Time
		u.ResetTokenHash = &h
		u.ResetTokenExpiry = &e
	}
	return &u, nil
}

func queryOne(ctx context.Context, db dbx.DBTX, query string, args ...any) (*models.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func execOne(ctx context.Context, db dbx.DBTX, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// mapError turns driver errors into repository sentinels. A malformed UUID
// can never match a row, so it reads as not found.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return common.ErrorAlreadyExists
		case pgInvalidText:
			return common.ErrorNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}
