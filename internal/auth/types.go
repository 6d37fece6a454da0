package auth

import "time"

// User is a registered account. Digest and Salt together form the stored
// credential record; the password itself is never kept in any form that can
// be compared without re-deriving.
type User struct {
	ID        string
	Username  string
	Digest    []byte
	Salt      []byte
	CreatedAt time.Time
}

// Principal identifies an authenticated caller.
type Principal struct {
	UserID   string
	Username string
}
