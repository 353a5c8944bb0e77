package outbox

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

var (
	ErrNotFound = errors.New("outbox: entry not found")
	ErrConflict = errors.New("outbox: entry changed concurrently")
)

// Entry is a booking the remote store did not accept yet. The service
// and barber details are captured at enqueue time for display.
//
// Version grows on every Update. The replayer only removes the version
// it pushed, so a cancel or status change made while a replay is in
// flight is pushed on the next pass instead of being lost.
type Entry struct {
	Appointment models.Appointment `json:"appointment"`

	ServiceName  string  `json:"service_name"`
	ServicePrice float64 `json:"service_price"`
	BarberName   string  `json:"barber_name"`

	Version int `json:"version"`
	// Deleted marks a booking the client cancelled; the replayer deletes
	// the remote row, if any, and then drops the entry.
	Deleted bool `json:"deleted,omitempty"`
	// Patched is set once the status changed after enqueue, so a plain
	// insert is not enough to bring the remote row up to date.
	Patched bool `json:"patched,omitempty"`
	// Parked entries failed with a permanent database error and are no
	// longer retried.
	Parked bool `json:"parked,omitempty"`

	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
	NextAttemptAt time.Time `json:"next_attempt_at"`
}

func (e Entry) ID() string {
	return e.Appointment.ID
}

type Store interface {
	// Add queues e unless its id is already queued. It returns the entry
	// that is queued under that id and whether it is the one just added.
	Add(ctx context.Context, e Entry) (*Entry, bool, error)
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)

	// Update runs fn on the stored entry and writes the result with the
	// version bumped, atomically. An error from fn aborts the write and
	// is returned as is.
	Update(ctx context.Context, id string, fn func(e *Entry) error) (*Entry, error)

	// RemoveIf drops the entry only while it is still at version.
	RemoveIf(ctx context.Context, id string, version int) (bool, error)
}

// Visible reports whether the entry still stands for a booking.
func (e Entry) Visible() bool {
	return !e.Deleted
}

// ListForUser keeps the visible entries owned by userID.
func ListForUser(ctx context.Context, s Store, userID string) ([]Entry, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Visible() && e.Appointment.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func sortByEnqueue(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EnqueuedAt.Before(entries[j].EnqueuedAt)
	})
}
