// Package password stores and checks account credentials as salted scrypt
// hashes encoded as "<saltHex>:<derivedKeyHex>".
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const saltSize = 16

// Params are the scrypt cost parameters. Changing them invalidates every
// stored hash, so production code must keep DefaultParams.
type Params struct {
	N      int
	R      int
	P      int
	KeyLen int
}

// DefaultParams match the parameters used by the gallery since its first release.
var DefaultParams = Params{N: 16384, R: 8, P: 1, KeyLen: 64}

// Hasher derives and verifies credential hashes.
type Hasher struct {
	params Params
}

func NewHasher() *Hasher {
	return &Hasher{params: DefaultParams}
}

// NewHasherWithParams is meant for tests that need cheaper key derivation.
func NewHasherWithParams(params Params) *Hasher {
	return &Hasher{params: params}
}

// Hash returns a fresh salted hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	raw := make([]byte, saltSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	derived, err := h.derive(password, salt)
	if err != nil {
		return "", err
	}
	return salt + ":" + hex.EncodeToString(derived), nil
}

// Verify reports whether password matches encoded. Malformed hashes never match.
func (h *Hasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	salt := parts[0]

	expected, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}

	derived, err := h.derive(password, salt)
	if err != nil {
		return false
	}

	if len(expected) != len(derived) {
		return false
	}
	return subtle.ConstantTimeCompare(expected, derived) == 1
}

// derive uses the hex form of the salt as KDF input, which is what hashes
// written by the previous backend were computed with.
func (h *Hasher) derive(password, salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), h.params.N, h.params.R, h.params.P, h.params.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
