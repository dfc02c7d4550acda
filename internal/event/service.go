package event

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gatherly.org/internal/auth"
	"gatherly.org/internal/ids"
)

// Service defines event registry and registration ledger operations.
// Ownership checks compare caller and organizer ids only; role claims are
// never re-validated against stored users.
type Service interface {
	List(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id string) (Event, error)
	Create(ctx context.Context, identity auth.Identity, fields Fields) (Event, error)
	Update(ctx context.Context, identity auth.Identity, id string, upd Update) (Event, error)
	Delete(ctx context.Context, identity auth.Identity, id string) error
	Register(ctx context.Context, identity auth.Identity, id string) (Event, error)
}

// InMemory implements Service with in-process concurrency safety.
// State lives only as long as the process.
type InMemory struct {
	mu     sync.RWMutex
	events map[string]*Event
	order  []string // ids in creation order
	now    func() time.Time
}

var _ Service = (*InMemory)(nil)

// NewInMemory creates an empty registry.
func NewInMemory() *InMemory {
	return &InMemory{
		events: make(map[string]*Event),
		now:    time.Now,
	}
}

// WithClock overrides the time source. Only intended for tests.
func (s *InMemory) WithClock(fn func() time.Time) *InMemory {
	if fn != nil {
		s.now = fn
	}
	return s
}

// List returns all events in creation order.
func (s *InMemory) List(ctx context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyEvent(s.events[id]))
	}
	return out, nil
}

func (s *InMemory) Get(ctx context.Context, id string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return copyEvent(ev), nil
}

func (s *InMemory) Create(ctx context.Context, identity auth.Identity, fields Fields) (Event, error) {
	if err := validateFields(fields); err != nil {
		return Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	ev := &Event{
		ID:           ids.New(),
		Title:        strings.TrimSpace(fields.Title),
		Date:         strings.TrimSpace(fields.Date),
		Time:         strings.TrimSpace(fields.Time),
		Description:  strings.TrimSpace(fields.Description),
		OrganizerID:  identity.UserID,
		Participants: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.events[ev.ID] = ev
	s.order = append(s.order, ev.ID)
	return copyEvent(ev), nil
}

// Update overwrites only the supplied fields after the ownership check.
func (s *InMemory) Update(ctx context.Context, identity auth.Identity, id string, upd Update) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	if ev.OrganizerID != identity.UserID {
		return Event{}, ErrForbidden
	}
	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" {
			return Event{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		ev.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Date != nil {
		ev.Date = strings.TrimSpace(*upd.Date)
	}
	if upd.Time != nil {
		ev.Time = strings.TrimSpace(*upd.Time)
	}
	if upd.Description != nil {
		ev.Description = strings.TrimSpace(*upd.Description)
	}
	ev.UpdatedAt = s.now().UTC()
	return copyEvent(ev), nil
}

// Delete removes the event together with its registration ledger.
func (s *InMemory) Delete(ctx context.Context, identity auth.Identity, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	if ev.OrganizerID != identity.UserID {
		return ErrForbidden
	}
	delete(s.events, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Register appends the caller to the participant set. A repeat registration
// fails with ErrAlreadyRegistered rather than silently succeeding, so the
// operation stays idempotent but observable.
func (s *InMemory) Register(ctx context.Context, identity auth.Identity, id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	for _, p := range ev.Participants {
		if p == identity.UserID {
			return Event{}, ErrAlreadyRegistered
		}
	}
	ev.Participants = append(ev.Participants, identity.UserID)
	ev.UpdatedAt = s.now().UTC()
	return copyEvent(ev), nil
}

func validateFields(fields Fields) error {
	if strings.TrimSpace(fields.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(fields.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if strings.TrimSpace(fields.Time) == "" {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	if strings.TrimSpace(fields.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	return nil
}

func copyEvent(ev *Event) Event {
	out := *ev
	out.Participants = make([]string, len(ev.Participants))
	copy(out.Participants, ev.Participants)
	return out
}
