package stream

import (
	"context"
	"sync"
	"time"
)

// Activity describes a change on the event registry worth broadcasting to
// live dashboards (a created event or a new registration).
type Activity struct {
	Type      string    `json:"type"` // "event.created" | "event.registered"
	EventID   string    `json:"event_id"`
	Title     string    `json:"title,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream fan-outs activity to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan Activity
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan Activity)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// activity. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan Activity {
	ch := make(chan Activity, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the activity to all subscribers.
func (s *Stream) Publish(act Activity) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- act:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
