package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classtrack.org/internal/credential"
	"classtrack.org/internal/ids"
)

const defaultTokenTTL = 24 * time.Hour

// Service implements registration and login over an injected UserStore.
// Credential derivation and token minting delegate to the credential package
// and the Issuer; the service holds no session state.
type Service struct {
	store  UserStore
	issuer *Issuer
	ttl    time.Duration
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithTokenTTL overrides the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithServiceClock overrides the time source (useful for tests).
func WithServiceClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service with optional configuration.
func NewService(store UserStore, issuer *Issuer, opts ...ServiceOption) *Service {
	svc := &Service{
		store:  store,
		issuer: issuer,
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// TokenTTL reports the configured token lifetime.
func (s *Service) TokenTTL() time.Duration { return s.ttl }

// Register derives a credential record for the password and stores it.
// Usernames are stored lower-cased; collisions return ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	digest, salt, err := credential.Derive(password)
	if err != nil {
		if errors.Is(err, credential.ErrEmptyPassword) {
			return nil, ErrInvalidInput
		}
		return nil, fmt.Errorf("derive credential: %w", err)
	}
	user := &User{
		ID:        ids.New(),
		Username:  username,
		Digest:    digest,
		Salt:      salt,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and mints a bearer token. Unknown usernames and
// wrong passwords are indistinguishable to the caller; a corrupt stored
// record surfaces as an internal error, never as a mismatch.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	ok, err := credential.Verify(password, user.Digest, user.Salt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("verify credential for user %s: %w", user.ID, err)
	}
	if !ok {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.issuer.Issue(user.Username, s.ttl)
}

// AuthenticateToken validates an access token and resolves its subject to a
// stored user.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (Principal, error) {
	claims, err := s.issuer.ParseAndValidate(token)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	user, err := s.store.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidToken
		}
		return Principal{}, err
	}
	return Principal{UserID: user.ID, Username: user.Username}, nil
}

func normalizeUsername(username string) string {
	return strings.TrimSpace(strings.ToLower(username))
}
