package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"impronta-api/internal/auth/token"
	"impronta-api/internal/domain"
	"impronta-api/internal/repository"
)

// Verifying against this keeps unknown-email logins as slow as real ones.
var dummyHash = "00000000000000000000000000000000:" + strings.Repeat("0", 128)

// PasswordHasher creates and checks stored credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// TokenIssuer signs bearer tokens for authenticated accounts.
type TokenIssuer interface {
	Sign(claims token.Claims) (string, error)
}

// RegisterInput is the raw registration payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     *string
}

// LoginInput is the raw login payload.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by successful registrations and logins.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AccountService describes account lifecycle operations.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	WhoAmI(ctx context.Context, id int64) (*domain.User, error)
}

type accountService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewAccountService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) AccountService {
	return &accountService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *accountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := validateNewPassword(in.Password)
	if err != nil {
		return nil, err
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	// the unique index on email is authoritative; this only avoids hashing for known duplicates
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.ID = id

	// re-read so store defaults such as timestamps are reported
	stored, err := s.users.GetByID(ctx, id)
	switch {
	case err == nil:
		user = stored
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("reload user: %w", err)
	}

	return s.issue(user)
}

func (s *accountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := validateLoginPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *accountService) WhoAmI(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user %d: %w", id, err)
	}
	return sanitizeUser(user), nil
}

func (s *accountService) issue(user *domain.User) (*AuthResult, error) {
	tok, err := s.tokens.Sign(token.Claims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: sanitizeUser(user), Token: tok}, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
