package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLen = 8
	maxFieldLen    = 255
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lowercases raw and reports whether it looks like local@domain.tld.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	return email, emailPattern.MatchString(email)
}

func validateEmail(raw string) (string, error) {
	email, ok := NormalizeEmail(raw)
	if !ok {
		return "", invalid("email", "email is not valid")
	}
	return email, nil
}

func validateNewPassword(raw string) (string, error) {
	password := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen || n > maxFieldLen {
		return "", invalid("password", "password must be between 8 and 255 characters")
	}
	return password, nil
}

func validateLoginPassword(raw string) (string, error) {
	password := strings.TrimSpace(raw)
	if password == "" {
		return "", invalid("password", "password is required")
	}
	if utf8.RuneCountInString(password) > maxFieldLen {
		return "", invalid("password", "password is too long")
	}
	return password, nil
}

// validateName maps an absent or empty name to nil.
func validateName(raw *string) (*string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	name := strings.TrimSpace(*raw)
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxFieldLen {
		return nil, invalid("name", "name must be between 1 and 255 characters")
	}
	return &name, nil
}
