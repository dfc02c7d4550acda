package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatherly.org/internal/ids"
	"gatherly.org/internal/obs"
)

// Notifier delivers best-effort outbound notifications. Failures never
// propagate to the operation that triggered them.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service owns account registration and credential verification, and mints
// tokens for authenticated users.
type Service struct {
	users    UserStore
	tokens   *TokenService
	notifier Notifier
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithNotifier enables the welcome notification on registration.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithServiceClock overrides the time source (useful for tests).
func WithServiceClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the credential service.
func NewService(users UserStore, tokens *TokenService, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	s := &Service{users: users, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an account with a one-way password hash. A duplicate
// email fails with ErrEmailTaken; any empty field with ErrInvalidInput.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	parsedRole, err := ParseRole(role)
	if err != nil {
		return User{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           ids.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         parsedRole,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return User{}, err
	}

	s.sendWelcome(ctx, user)
	return user, nil
}

// Authenticate verifies credentials. Unknown email and wrong password both
// fail with ErrInvalidCredentials so account existence does not leak.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return *user, nil
}

// Login authenticates and issues a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", time.Time{}, User{}, err
	}
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return "", time.Time{}, User{}, err
	}
	return token, expiresAt, user, nil
}

// Authorize verifies a bearer token and returns the caller identity.
func (s *Service) Authorize(token string) (Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	return claims.Identity(), nil
}

func (s *Service) sendWelcome(ctx context.Context, user User) {
	if s.notifier == nil {
		return
	}
	subject := "Registration Successful"
	body := fmt.Sprintf("Hello %s, you have successfully registered.", user.Name)
	if err := s.notifier.Send(ctx, user.Email, subject, body); err != nil {
		obs.LogRequest(map[string]any{
			"ts":    s.now().UTC().Format(time.RFC3339Nano),
			"level": "warn",
			"msg":   "welcome notification failed",
			"user":  user.ID,
			"error": err.Error(),
		})
	}
}
