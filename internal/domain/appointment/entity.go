package appointment

import (
	"time"

	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// Apply moves ap to the target status through the matching action.
func Apply(ap *models.Appointment, to Status, now time.Time) error {
	switch to {
	case StatusConfirmed:
		return Confirm(ap)
	case StatusCancelled:
		return Cancel(ap, now)
	case StatusCompleted:
		return Complete(ap, now)
	}
	return httperr.ErrBusiness("invalid_status")
}
