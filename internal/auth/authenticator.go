// Package auth resolves bearer tokens presented on requests into the
// numeric id of the calling account.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"impronta-api/internal/auth/token"
)

var (
	// ErrMissingCredential means no usable "Bearer <token>" header was sent.
	ErrMissingCredential = errors.New("missing bearer token")
	// ErrInvalidToken covers every token verification failure.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidCredential means the token verified but names no valid account id.
	ErrInvalidCredential = errors.New("token subject is not a valid user id")
)

// subjectClaims are tried in order; tokens from older clients used id/userId.
var subjectClaims = []string{"sub", "id", "userId"}

// TokenVerifier verifies a raw token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (token.Claims, error)
}

// Authenticator turns an Authorization header value into a user id.
type Authenticator struct {
	tokens TokenVerifier
}

func NewAuthenticator(tokens TokenVerifier) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authenticate returns the user id carried by a valid bearer token. Token
// failures are reported as ErrInvalidToken wrapping the codec error, so
// callers can log the cause without exposing it.
func (a *Authenticator) Authenticate(authorization string) (int64, error) {
	scheme, raw, _ := strings.Cut(strings.TrimSpace(authorization), " ")
	raw = strings.TrimSpace(raw)
	if !strings.EqualFold(scheme, "bearer") || raw == "" {
		return 0, ErrMissingCredential
	}

	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, ok := userIDFromClaims(claims)
	if !ok {
		return 0, ErrInvalidCredential
	}
	return id, nil
}

func userIDFromClaims(claims token.Claims) (int64, bool) {
	for _, name := range subjectClaims {
		v, present := claims[name]
		if !present || v == nil {
			continue
		}
		id, ok := positiveInt(v)
		return id, ok
	}
	return 0, false
}

func positiveInt(v any) (int64, bool) {
	var f float64
	switch n := v.(type) {
	case string:
		s := strings.TrimSpace(n)
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			return id, id > 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		if id, err := n.Int64(); err == nil {
			return id, id > 0
		}
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case int64:
		return n, n > 0
	case int:
		return int64(n), n > 0
	default:
		return 0, false
	}

	if f != math.Trunc(f) || f <= 0 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
