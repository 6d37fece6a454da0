package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "classtrack"

// MinSigningKeyLength is the smallest accepted HMAC signing key size in bytes.
const MinSigningKeyLength = 32

// Claims represents JWT claims used across the service.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer mints and validates HS512-signed bearer tokens. It holds no state
// beyond the signing key; verification is stateless.
type Issuer struct {
	key []byte
	now func() time.Time
}

// IssuerOption configures Issuer behavior.
type IssuerOption func(*Issuer)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.now = fn
		}
	}
}

// NewIssuer validates the signing key and constructs an Issuer. Keys shorter
// than MinSigningKeyLength are rejected outright, never padded or truncated.
func NewIssuer(key []byte, opts ...IssuerOption) (*Issuer, error) {
	if len(key) < MinSigningKeyLength {
		return nil, ErrSigningKeyInvalid
	}
	iss := &Issuer{
		key: append([]byte(nil), key...),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(iss)
	}
	return iss, nil
}

// Issue signs a token for the given identity expiring at issue time + ttl.
func (i *Issuer) Issue(identity string, ttl time.Duration) (string, time.Time, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", time.Time{}, errors.New("identity is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("ttl must be greater than zero")
	}

	now := i.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseAndValidate verifies the token signature and required claims.
func (i *Issuer) ParseAndValidate(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS512 {
			return nil, ErrInvalidToken
		}
		return i.key, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := i.validateClaims(claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *Issuer) validateClaims(claims *Claims) error {
	if claims.Issuer != issuerName {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := i.now().UTC()
	// A token presented at the expiry instant is already invalid.
	if !now.Before(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
