package service

import "errors"

var (
	// ErrInvalidCredentials is the single answer to any failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrUserNotFound is returned when an authenticated account no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports malformed input. Message is safe to show to clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
