// Package mysql implements the user store on MySQL.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"

	"impronta-api/internal/domain"
	"impronta-api/internal/repository"
)

// errDupEntry is MySQL's ER_DUP_ENTRY.
const errDupEntry = 1062

const selectUser = `
SELECT id, email, password_hash, name, created_at, updated_at
FROM users
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (email, password_hash, name)
VALUES (?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		nullString(user.Name),
	)
	if err != nil {
		var myErr *mysqldrv.MySQLError
		if errors.As(err, &myErr) && myErr.Number == errDupEntry {
			return 0, fmt.Errorf("insert user: %w", repository.ErrDuplicateEmail)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE email = ? LIMIT 1`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE id = ? LIMIT 1`, id)
	return scanUser(row)
}

// Health runs a trivial query to confirm a connection can be acquired.
func (r *UserRepository) Health(ctx context.Context) (bool, error) {
	var ok int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 AS ok`).Scan(&ok); err != nil {
		return false, fmt.Errorf("health query: %w", err)
	}
	return ok == 1, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user      domain.User
		name      sql.NullString
		hash      sql.NullString
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&hash,
		&name,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.PasswordHash = hash.String
	if name.Valid {
		user.Name = &name.String
	}
	if createdAt.Valid {
		user.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}
	return &user, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.HealthChecker  = (*UserRepository)(nil)
)
