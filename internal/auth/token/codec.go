// Package token issues and verifies the compact HS256 bearer tokens handed
// out at login. Only HS256 is accepted; tokens carry their own expiry and are
// never stored server side.
package token

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const algorithm = "HS256"

var (
	ErrInvalidFormat        = errors.New("invalid token format")
	ErrInvalidSignature     = errors.New("invalid token signature")
	ErrUnsupportedAlgorithm = errors.New("unsupported token algorithm")
	ErrExpired              = errors.New("token expired")
)

// Claims is the decoded token payload. Numbers decoded by Verify are json.Number.
type Claims map[string]any

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Codec signs and verifies tokens with a single symmetric secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces the wall clock used for iat/exp.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret []byte, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	c := &Codec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Sign returns a token for claims with iat and exp set from the codec clock.
func (c *Codec) Sign(claims Claims) (string, error) {
	issuedAt := c.now().Unix()
	body := make(Claims, len(claims)+2)
	for k, v := range claims {
		body[k] = v
	}
	body["iat"] = issuedAt
	body["exp"] = issuedAt + int64(c.ttl/time.Second)

	headerJSON, err := json.Marshal(header{Alg: algorithm, Typ: "JWT"})
	if err != nil {
		return "", fmt.Errorf("encode token header: %w", err)
	}
	claimsJSON, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode token claims: %w", err)
	}

	data := encodeSegment(headerJSON) + "." + encodeSegment(claimsJSON)
	return data + "." + c.signature(data), nil
}

// Verify checks signature, algorithm and expiry and returns the decoded claims.
func (c *Codec) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidFormat
	}

	data := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(c.signature(data))) {
		return nil, ErrInvalidSignature
	}

	var h header
	if err := decodeSegment(parts[0], &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidFormat, err)
	}
	if h.Alg != algorithm {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, h.Alg)
	}

	var claims Claims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %v", ErrInvalidFormat, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: claims: not an object", ErrInvalidFormat)
	}

	if raw, ok := claims["exp"]; ok && raw != nil {
		exp, err := numericClaim(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: exp: %v", ErrInvalidFormat, err)
		}
		if float64(c.now().Unix()) >= exp {
			return nil, ErrExpired
		}
	}

	return claims, nil
}

func (c *Codec) signature(data string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(data))
	return encodeSegment(mac.Sum(nil))
}

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeSegment(segment string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func numericClaim(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
