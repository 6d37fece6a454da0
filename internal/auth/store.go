package auth

import "context"

// UserStore describes persistence operations required by the auth service.
// Implementations must keep concurrent creations for distinct usernames from
// corrupting each other's records.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
