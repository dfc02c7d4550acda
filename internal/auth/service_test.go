package auth

import (
	"context"
	"errors"
	"testing"
)

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.calls = append(n.calls, to)
	return n.err
}

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	tokens, err := NewTokenService([]byte("test-secret"))
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	svc, err := NewService(NewInMemoryUsers(), tokens, opts...)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func TestRegisterThenAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123", "organizer")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected assigned user id")
	}
	if user.Role != RoleOrganizer {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if user.PasswordHash == "pw123" || user.PasswordHash == "" {
		t.Fatal("plaintext password must never be stored")
	}

	got, err := svc.Authenticate(ctx, "ann@x.com", "pw123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("authenticated wrong user: %s != %s", got.ID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123", "organizer"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(ctx, "Impostor", "ann@x.com", "other", "attendee")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	// The original record is untouched.
	got, err := svc.Authenticate(ctx, "ann@x.com", "pw123")
	if err != nil || got.Name != "Ann" {
		t.Fatalf("first registration corrupted: %v %+v", err, got)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name, email, password, role string
	}{
		{"", "a@x.com", "pw", "attendee"},
		{"Ann", "", "pw", "attendee"},
		{"Ann", "not-an-email", "pw", "attendee"},
		{"Ann", "a@x.com", "", "attendee"},
		{"Ann", "a@x.com", "pw", ""},
		{"Ann", "a@x.com", "pw", "admin"},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.name, tc.email, tc.password, tc.role); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %+v: expected ErrInvalidInput, got %v", tc, err)
		}
	}
}

func TestAuthenticateDoesNotLeakAccountExistence(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123", "organizer"); err != nil {
		t.Fatal(err)
	}

	_, unknownErr := svc.Authenticate(ctx, "nobody@x.com", "pw123")
	_, wrongErr := svc.Authenticate(ctx, "ann@x.com", "wrong")
	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected identical generic errors, got %v / %v", unknownErr, wrongErr)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123", "organizer")
	if err != nil {
		t.Fatal(err)
	}
	token, _, _, err := svc.Login(ctx, "ann@x.com", "pw123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	identity, err := svc.Authorize(token)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if identity.UserID != user.ID || identity.Role != user.Role || identity.Email != user.Email {
		t.Fatalf("identity mismatch: %+v", identity)
	}
}

func TestRegisterSendsWelcomeNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(t, WithNotifier(notifier))

	if _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "pw123", "organizer"); err != nil {
		t.Fatal(err)
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "ann@x.com" {
		t.Fatalf("expected one welcome notification, got %v", notifier.calls)
	}
}

func TestNotificationFailureDoesNotFailRegistration(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := newTestService(t, WithNotifier(notifier))

	user, err := svc.Register(context.Background(), "Ann", "ann@x.com", "pw123", "organizer")
	if err != nil {
		t.Fatalf("registration must survive notification failure: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "ann@x.com", "pw123"); err != nil {
		t.Fatalf("user %s not persisted: %v", user.ID, err)
	}
}
