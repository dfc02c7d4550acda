package event

import (
	"errors"
	"time"
)

// Event is something an organizer runs and attendees register for.
// OrganizerID is fixed at creation; only that organizer may mutate or
// delete the event. Participants holds registered user ids.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Description  string    `json:"description"`
	OrganizerID  string    `json:"organizer_id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fields carries the caller-supplied attributes for creation.
type Fields struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// Update carries a partial mutation; nil fields keep their prior values.
type Update struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Description *string `json:"description"`
}

var (
	ErrNotFound          = errors.New("event not found")
	ErrForbidden         = errors.New("not your event")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrInvalidInput      = errors.New("invalid input")
)
