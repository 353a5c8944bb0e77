package appointment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
)

// SetAppointmentStatus is the owner's confirm/cancel action. The remote
// row and the outbox copy are patched independently.
type SetAppointmentStatus struct {
	repo   domain.Repository
	outbox outbox.Store
	audit  audit.Recorder
	log    *zap.Logger
	now    func() time.Time
}

func NewSetAppointmentStatus(
	repo domain.Repository,
	box outbox.Store,
	audit audit.Recorder,
	log *zap.Logger,
) *SetAppointmentStatus {
	return &SetAppointmentStatus{
		repo:   repo,
		outbox: box,
		audit:  audit,
		log:    log,
		now:    time.Now,
	}
}

func (uc *SetAppointmentStatus) Execute(
	ctx context.Context,
	actorID string,
	appointmentID string,
	to domain.Status,
) (*dto.StatusChange, error) {

	now := uc.now()
	res := &dto.StatusChange{ID: appointmentID, Status: string(to)}

	// --------------------------------------------------
	// 1. Outbox
	// --------------------------------------------------
	// patched before the remote row so a replay in flight re-reads it
	fallbackErr := uc.patchFallback(ctx, appointmentID, to, now, res)

	// --------------------------------------------------
	// 2. Banco
	// --------------------------------------------------
	remoteErr := uc.patchRemote(ctx, appointmentID, to, now, res)
	if remoteErr != nil && !isNotFound(remoteErr) {
		if _, business := httperr.BusinessCode(remoteErr); business {
			return nil, remoteErr
		}
		uc.log.Warn("remote status patch failed",
			zap.String("appointment_id", appointmentID),
			zap.Error(remoteErr),
		)
	}

	if fallbackErr != nil {
		if _, business := httperr.BusinessCode(fallbackErr); business && !res.RemoteOK {
			return nil, fallbackErr
		}
		uc.log.Warn("outbox status patch failed",
			zap.String("appointment_id", appointmentID),
			zap.Error(fallbackErr),
		)
	}

	if !res.RemoteOK && !res.FallbackOK {
		if remoteErr != nil && !isNotFound(remoteErr) {
			return nil, remoteErr
		}
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   audit.Ptr(actorID),
		Action:   "appointment_" + string(to),
		Entity:   "appointment",
		EntityID: audit.Ptr(appointmentID),
		Metadata: map[string]any{
			"remote_ok":   res.RemoteOK,
			"fallback_ok": res.FallbackOK,
		},
	})

	return res, nil
}

func (uc *SetAppointmentStatus) patchRemote(
	ctx context.Context,
	id string,
	to domain.Status,
	now time.Time,
	res *dto.StatusChange,
) error {
	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		return err
	}

	if err := domain.Apply(ap, to, now); err != nil {
		return err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return err
	}

	v := withCustomer(viewFromModel(*ap), ap.User)
	res.Appointment = &v
	res.RemoteOK = true
	return nil
}

func (uc *SetAppointmentStatus) patchFallback(
	ctx context.Context,
	id string,
	to domain.Status,
	now time.Time,
	res *dto.StatusChange,
) error {
	e, err := uc.outbox.Update(ctx, id, func(e *outbox.Entry) error {
		if e.Deleted {
			return outbox.ErrNotFound
		}
		if err := domain.Apply(&e.Appointment, to, now); err != nil {
			return err
		}
		e.Patched = true
		return nil
	})
	if errors.Is(err, outbox.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	v := withCustomer(viewFromEntry(*e), e.Appointment.User)
	res.Appointment = &v
	res.FallbackOK = true
	return nil
}

func isNotFound(err error) bool {
	return httperr.IsBusiness(err, "appointment_not_found")
}
