package repository

import (
	"context"
	"errors"

	"impronta-api/internal/domain"
)

var (
	// ErrNotFound is returned when no user row matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the store rejects an insert on the email unique index.
	ErrDuplicateEmail = errors.New("user email already exists")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// HealthChecker probes store connectivity.
type HealthChecker interface {
	Health(ctx context.Context) (bool, error)
}
