package auth

import "context"

// UserStore describes persistence operations required by the auth subsystem.
// Create must reject a duplicate email with ErrEmailTaken; emails are
// compared exactly as stored.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
