package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"classtrack.org/internal/credential"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	iss, err := NewIssuer(testKey)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return NewService(NewInMemoryStore(), iss, WithTokenTTL(time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected normalized username, got %q", user.Username)
	}
	if user.ID == "" {
		t.Fatal("expected user id")
	}
	if len(user.Digest) == 0 || len(user.Salt) == 0 {
		t.Fatal("expected stored credential record")
	}

	token, expiresAt, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected token")
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	principal, err := svc.AuthenticateToken(ctx, token)
	if err != nil {
		t.Fatalf("AuthenticateToken: %v", err)
	}
	if principal.Username != "alice" || principal.UserID != user.ID {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "pw-one"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "Bob", "pw-two"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegisterRejectsEmptyInputs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "pw"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(ctx, "carol", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, unknownErr := svc.Login(ctx, "nobody", "whatever")
	_, _, wrongErr := svc.Login(ctx, "alice", "wrong")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLoginSurfacesCorruptCredentialRecord(t *testing.T) {
	iss, err := NewIssuer(testKey)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	store := NewInMemoryStore()
	svc := NewService(store, iss)
	ctx := context.Background()

	// A record with an empty digest is corruption, not a wrong password.
	if err := store.Create(ctx, &User{ID: "u1", Username: "mallory", Salt: []byte("salt")}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, loginErr := svc.Login(ctx, "mallory", "anything")
	if errors.Is(loginErr, ErrInvalidCredentials) {
		t.Fatalf("corruption must not be reported as a mismatch: %v", loginErr)
	}
	if !errors.Is(loginErr, credential.ErrInvalidCredentialData) {
		t.Fatalf("expected ErrInvalidCredentialData, got %v", loginErr)
	}
}

func TestAuthenticateTokenUnknownSubject(t *testing.T) {
	iss, err := NewIssuer(testKey)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	svc := NewService(NewInMemoryStore(), iss)

	// Structurally valid token for an identity that was never registered.
	token, _, err := iss.Issue("ghost", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.AuthenticateToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestInMemoryStoreCopiesRecords(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	u := &User{ID: "u1", Username: "dave", Digest: []byte{1, 2}, Salt: []byte{3, 4}}
	if err := store.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	u.Digest[0] = 99

	got, err := store.FindByUsername(ctx, "dave")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.Digest[0] != 1 {
		t.Fatal("stored record aliased caller's slice")
	}
	got.Salt[0] = 77
	again, _ := store.FindByUsername(ctx, "dave")
	if again.Salt[0] != 3 {
		t.Fatal("returned record aliased stored slice")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := PrincipalFromContext(ctx); ok {
		t.Fatal("expected no principal on fresh context")
	}

	ctx = ContextWithPrincipal(ctx, Principal{UserID: "u7", Username: "erin"})
	ctx = ContextWithToken(ctx, "raw-token")

	p, ok := PrincipalFromContext(ctx)
	if !ok || p.UserID != "u7" || p.Username != "erin" {
		t.Fatalf("unexpected principal: %+v ok=%v", p, ok)
	}
	tok, ok := TokenFromContext(ctx)
	if !ok || tok != "raw-token" {
		t.Fatalf("unexpected token: %q ok=%v", tok, ok)
	}
}
