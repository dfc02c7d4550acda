package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"gatherly.org/internal/auth"
)

var (
	ann = auth.Identity{UserID: "ann", Role: auth.RoleOrganizer, Email: "ann@x.com"}
	bob = auth.Identity{UserID: "bob", Role: auth.RoleAttendee, Email: "bob@x.com"}
)

func mustCreate(t *testing.T, s *InMemory, who auth.Identity, title string) Event {
	t.Helper()
	ev, err := s.Create(context.Background(), who, Fields{
		Title:       title,
		Date:        "2025-10-01",
		Time:        "18:00",
		Description: "desc",
	})
	if err != nil {
		t.Fatalf("Create %q: %v", title, err)
	}
	return ev
}

func TestCreateAssignsOrganizerAndEmptyLedger(t *testing.T) {
	s := NewInMemory()
	ev := mustCreate(t, s, ann, "Go meetup")

	if ev.ID == "" {
		t.Fatal("expected assigned event id")
	}
	if ev.OrganizerID != ann.UserID {
		t.Fatalf("organizer %q, want %q", ev.OrganizerID, ann.UserID)
	}
	if ev.Participants == nil || len(ev.Participants) != 0 {
		t.Fatalf("expected empty participant list, got %v", ev.Participants)
	}
}

func TestCreateValidation(t *testing.T) {
	s := NewInMemory()
	cases := []Fields{
		{Date: "2025-10-01", Time: "18:00", Description: "d"},
		{Title: "t", Time: "18:00", Description: "d"},
		{Title: "t", Date: "2025-10-01", Description: "d"},
		{Title: "t", Date: "2025-10-01", Time: "18:00"},
		{Title: "   ", Date: "2025-10-01", Time: "18:00", Description: "d"},
	}
	for _, fields := range cases {
		if _, err := s.Create(context.Background(), ann, fields); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("fields %+v: expected ErrInvalidInput, got %v", fields, err)
		}
	}
}

func TestListPreservesCreationOrder(t *testing.T) {
	s := NewInMemory()
	first := mustCreate(t, s, ann, "first")
	second := mustCreate(t, s, ann, "second")
	third := mustCreate(t, s, ann, "third")

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 events, got %d", len(list))
	}
	for i, want := range []string{first.ID, second.ID, third.ID} {
		if list[i].ID != want {
			t.Fatalf("position %d: got %s, want %s", i, list[i].ID, want)
		}
	}
}

func TestUpdatePartialFields(t *testing.T) {
	s := NewInMemory()
	ev := mustCreate(t, s, ann, "Go meetup")

	title := "Go meetup v2"
	got, err := s.Update(context.Background(), ann, ev.ID, Update{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "Go meetup v2" {
		t.Fatalf("title not updated: %q", got.Title)
	}
	// Fields omitted from the update keep their values.
	if got.Date != ev.Date || got.Time != ev.Time || got.Description != ev.Description {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	s := NewInMemory()
	ev := mustCreate(t, s, ann, "Go meetup")

	empty := "   "
	if _, err := s.Update(context.Background(), ann, ev.ID, Update{Title: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMutationRequiresOwnership(t *testing.T) {
	s := NewInMemory()
	ev := mustCreate(t, s, ann, "Ann's event")

	title := "hijacked"
	if _, err := s.Update(context.Background(), bob, ev.ID, Update{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("update by non-organizer: expected ErrForbidden, got %v", err)
	}
	if err := s.Delete(context.Background(), bob, ev.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete by non-organizer: expected ErrForbidden, got %v", err)
	}
	// The event is unchanged afterwards.
	got, err := s.Get(context.Background(), ev.ID)
	if err != nil || got.Title != "Ann's event" {
		t.Fatalf("event mutated by forbidden caller: %v %+v", err, got)
	}
}

func TestRegisterAppendsOnce(t *testing.T) {
	s := NewInMemory()
	ev := mustCreate(t, s, ann, "Go meetup")

	got, err := s.Register(context.Background(), bob, ev.ID)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(got.Participants) != 1 || got.Participants[0] != bob.UserID {
		t.Fatalf("unexpected ledger: %v", got.Participants)
	}

	if _, err := s.Register(context.Background(), bob, ev.ID); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("repeat registration: expected ErrAlreadyRegistered, got %v", err)
	}
	// The ledger still holds a single entry.
	got, err = s.Get(context.Background(), ev.ID)
	if err != nil || len(got.Participants) != 1 {
		t.Fatalf("ledger corrupted by repeat attempt: %v %v", err, got.Participants)
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	s := NewInMemory()
	if _, err := s.Register(context.Background(), bob, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesEventAndLedger(t *testing.T) {
	s := NewInMemory()
	keep := mustCreate(t, s, ann, "keep")
	drop := mustCreate(t, s, ann, "drop")
	if _, err := s.Register(context.Background(), bob, drop.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(context.Background(), ann, drop.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(context.Background(), drop.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted event still readable: %v", err)
	}
	list, err := s.List(context.Background())
	if err != nil || len(list) != 1 || list[0].ID != keep.ID {
		t.Fatalf("unexpected list after delete: %v %v", err, list)
	}
}

func TestReturnedEventsAreCopies(t *testing.T) {
	s := NewInMemory()
	ev := mustCreate(t, s, ann, "Go meetup")
	if _, err := s.Register(context.Background(), bob, ev.ID); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(context.Background(), ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Participants[0] = "tampered"
	got.Title = "tampered"

	fresh, err := s.Get(context.Background(), ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Participants[0] != bob.UserID || fresh.Title != "Go meetup" {
		t.Fatal("caller mutation leaked into stored state")
	}
}

func TestClockStampsTimestamps(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s := NewInMemory().WithClock(func() time.Time { return current })

	ev := mustCreate(t, s, ann, "Go meetup")
	if !ev.CreatedAt.Equal(base) || !ev.UpdatedAt.Equal(base) {
		t.Fatalf("unexpected timestamps: %v %v", ev.CreatedAt, ev.UpdatedAt)
	}

	current = base.Add(time.Hour)
	title := "later"
	got, err := s.Update(context.Background(), ann, ev.ID, Update{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(base) || !got.UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("update timestamps wrong: %v %v", got.CreatedAt, got.UpdatedAt)
	}
}
