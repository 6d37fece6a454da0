// Package credential derives and verifies salted password digests.
//
// A credential record never stores the password itself. Derive produces an
// HMAC-SHA512 digest of the password keyed by a freshly generated random
// salt; Verify recomputes the digest from a candidate password and compares
// in constant time.
package credential

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
)

// SaltLength is the size in bytes of freshly generated salts.
const SaltLength = 32

// DigestLength is the size in bytes of derived digests.
const DigestLength = sha512.Size

var (
	// ErrInvalidCredentialData indicates a nil or empty stored digest/salt.
	// It signals record corruption, not a wrong password.
	ErrInvalidCredentialData = errors.New("credential: invalid digest or salt")

	// ErrEmptyPassword indicates derivation was attempted on an empty password.
	ErrEmptyPassword = errors.New("credential: password is empty")
)

// Derive generates a fresh random salt and computes the keyed digest of the
// UTF-8 encoded password. Repeated calls with the same password yield
// different salts and therefore different digests.
func Derive(password string) (digest, salt []byte, err error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}
	salt = make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	return compute(password, salt), salt, nil
}

// Verify reports whether password matches the stored digest/salt pair.
// The digest comparison is constant-time.
func Verify(password string, digest, salt []byte) (bool, error) {
	if len(digest) == 0 || len(salt) == 0 {
		return false, ErrInvalidCredentialData
	}
	return hmac.Equal(compute(password, salt), digest), nil
}

func compute(password string, salt []byte) []byte {
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
