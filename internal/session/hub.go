package session

import (
	"context"
	"sync"
	"time"
)

const (
	EventAccessChanged = "access_changed"
	EventSignedOut     = "signed_out"
)

// Event is a change to one user's session state.
type Event struct {
	UserID string    `json:"user_id"`
	Type   string    `json:"type"`
	Status string    `json:"status,omitempty"`
	State  string    `json:"state,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher is what use cases call after changing session state.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Hub fans events out to the subscribers of this instance.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Event)}
}

// Subscribe returns a buffered channel of the user's events and the
// function that releases it.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan Event, 8)

	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan Event)
	}
	h.subs[userID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
}

// Publish delivers locally. Slow subscribers miss events instead of
// blocking the publisher.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

var _ Publisher = (*Hub)(nil)
