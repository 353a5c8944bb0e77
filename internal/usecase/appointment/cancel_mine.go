package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
)

// CancelMyAppointment is the client-side cancellation: the row is
// deleted, not moved to cancelled.
type CancelMyAppointment struct {
	repo   domain.Repository
	outbox outbox.Store
	audit  audit.Recorder
}

func NewCancelMyAppointment(
	repo domain.Repository,
	box outbox.Store,
	audit audit.Recorder,
) *CancelMyAppointment {
	return &CancelMyAppointment{
		repo:   repo,
		outbox: box,
		audit:  audit,
	}
}

func (uc *CancelMyAppointment) Execute(
	ctx context.Context,
	userID string,
	appointmentID string,
) error {

	// the tombstone goes first so a replay in flight deletes what it inserts
	tombstoned, err := uc.tombstone(ctx, userID, appointmentID)
	if err != nil {
		return err
	}

	deleted, err := uc.repo.DeleteAppointmentForUser(ctx, appointmentID, userID)
	if err != nil && !tombstoned {
		return err
	}

	if !deleted && !tombstoned {
		return httperr.ErrBusiness("appointment_not_found")
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   audit.Ptr(userID),
		Action:   "appointment_deleted",
		Entity:   "appointment",
		EntityID: audit.Ptr(appointmentID),
	})

	return nil
}

// tombstone marks the caller's pending entry as cancelled. The replayer
// removes the remote row, if any, and drops the entry.
func (uc *CancelMyAppointment) tombstone(ctx context.Context, userID, id string) (bool, error) {
	_, err := uc.outbox.Update(ctx, id, func(e *outbox.Entry) error {
		if e.Deleted || e.Appointment.UserID != userID {
			return outbox.ErrNotFound
		}
		e.Deleted = true
		return nil
	})
	if errors.Is(err, outbox.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
