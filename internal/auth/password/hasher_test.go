package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// produced by the Node backend: crypto.scryptSync("longenough1", salt, 64)
const legacyHash = "00112233445566778899aabbccddeeff:" +
	"140f957b6f8fbfe22352733aedef3f367c4c507079a9210d165bfab7b8f95db8" +
	"565e2f4ddfb127e87dcb2d09c82acee3c7c1c44bfda01b56374bb52119eadf03"

func testHasher() *Hasher {
	return NewHasherWithParams(Params{N: 1024, R: 8, P: 1, KeyLen: 64})
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := testHasher()

	for _, pw := range []string{"longenough1", "pässwörd-ünïcode", strings.Repeat("x", 255)} {
		encoded, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, h.Verify(pw, encoded), "password %q should verify", pw)
		assert.False(t, h.Verify(pw+"!", encoded))
		assert.False(t, h.Verify("", encoded))
	}
}

func TestHashFormat(t *testing.T) {
	h := testHasher()

	encoded, err := h.Hash("longenough1")
	require.NoError(t, err)

	salt, key, ok := strings.Cut(encoded, ":")
	require.True(t, ok)
	assert.Len(t, salt, 32)
	assert.Len(t, key, 128)
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := testHasher()

	a, err := h.Hash("longenough1")
	require.NoError(t, err)
	b, err := h.Hash("longenough1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("longenough1", a))
	assert.True(t, h.Verify("longenough1", b))
}

func TestDeriveIsDeterministic(t *testing.T) {
	h := testHasher()

	a, err := h.derive("longenough1", "abcdef")
	require.NoError(t, err)
	b, err := h.derive("longenough1", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestVerifyLegacyHash(t *testing.T) {
	h := NewHasher()

	assert.True(t, h.Verify("longenough1", legacyHash))
	assert.False(t, h.Verify("longenough2", legacyHash))
}

func TestVerifyMalformedHash(t *testing.T) {
	h := testHasher()

	cases := map[string]string{
		"empty":         "",
		"no separator":  "00112233445566778899aabbccddeeff",
		"missing salt":  ":140f957b",
		"missing key":   "00112233445566778899aabbccddeeff:",
		"non hex key":   "00112233445566778899aabbccddeeff:zzzz",
		"short key":     "00112233445566778899aabbccddeeff:140f",
		"bcrypt format": "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, h.Verify("longenough1", encoded))
		})
	}
}
