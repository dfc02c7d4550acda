package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role distinguishes users who run events from users who attend them.
// It is fixed at registration and never changes afterwards.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

// ParseRole normalizes raw input into a known role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleOrganizer:
		return RoleOrganizer, nil
	case RoleAttendee:
		return RoleAttendee, nil
	default:
		return "", fmt.Errorf("%w: unsupported role %q", ErrInvalidInput, raw)
	}
}

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller derived from a verified token.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
}
