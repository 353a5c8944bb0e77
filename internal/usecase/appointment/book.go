package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
)

const (
	PersistedRemote   = "remote"
	PersistedFallback = "fallback"
)

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo    domain.Repository
	catalog domain.Catalog
	outbox  outbox.Store
	audit   audit.Recorder
	log     *zap.Logger

	slots []string
	loc   *time.Location
	now   func() time.Time
}

func NewBookAppointment(
	repo domain.Repository,
	catalog domain.Catalog,
	box outbox.Store,
	audit audit.Recorder,
	log *zap.Logger,
	slots []string,
	loc *time.Location,
) *BookAppointment {
	return &BookAppointment{
		repo:    repo,
		catalog: catalog,
		outbox:  box,
		audit:   audit,
		log:     log,
		slots:   slots,
		loc:     loc,
		now:     time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in domain.BookingInput,
) (*dto.BookingConfirmation, error) {

	// --------------------------------------------------
	// 1. Campos obrigatórios
	// --------------------------------------------------
	if err := in.Validate(uc.slots); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Data / hora no mês corrente
	// --------------------------------------------------
	start, err := domain.StartTime(uc.now().In(uc.loc), in.Day, in.Time)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Id do cliente (replay idempotente)
	// --------------------------------------------------
	id := uuid.NewString()
	if in.RequestID != "" {
		parsed, err := uuid.Parse(in.RequestID)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_request_id")
		}
		id = parsed.String()
	}

	// --------------------------------------------------
	// 4. Serviço e profissional
	// --------------------------------------------------
	service, barber, err := uc.resolve(ctx, in.ServiceID, in.BarberID)
	if err != nil {
		return nil, err
	}

	ap := models.Appointment{
		ID:        id,
		UserID:    in.UserID,
		ServiceID: in.ServiceID,
		BarberID:  in.BarberID,
		StartTime: start,
		Status:    string(domain.InitialStatus()),
	}

	confirmation := &dto.BookingConfirmation{
		AppointmentID: ap.ID,
		ServiceName:   service.Name,
		BarberName:    barber.Name,
		StartTime:     start,
		Date:          start.Format("2006-01-02T15:04:05"),
		Status:        ap.Status,
		Persisted:     PersistedRemote,
	}

	// --------------------------------------------------
	// 5. Insert remoto; falha vai para o outbox
	// --------------------------------------------------
	if insertErr := uc.repo.CreateAppointment(ctx, &ap); insertErr != nil {
		uc.log.Warn("remote insert failed, keeping booking in outbox",
			zap.String("appointment_id", ap.ID),
			zap.Error(insertErr),
		)

		now := uc.now()
		queued, added, err := uc.outbox.Add(ctx, outbox.Entry{
			Appointment:   ap,
			ServiceName:   service.Name,
			ServicePrice:  service.Price,
			BarberName:    barber.Name,
			LastError:     insertErr.Error(),
			EnqueuedAt:    now,
			NextAttemptAt: now,
		})
		if err != nil {
			return nil, err
		}
		if !added && (!queued.Visible() || !sameBooking(queued.Appointment, ap)) {
			return nil, httperr.ErrBusiness("request_id_conflict")
		}

		confirmation.Status = queued.Appointment.Status
		confirmation.Persisted = PersistedFallback
	} else if in.RequestID != "" {
		// the insert ignores an existing id; make sure the row is this booking
		stored, err := uc.repo.GetAppointment(ctx, ap.ID)
		if err != nil {
			return nil, err
		}
		if !sameBooking(*stored, ap) {
			return nil, httperr.ErrBusiness("request_id_conflict")
		}
		confirmation.Status = stored.Status
	}

	// --------------------------------------------------
	// 6. Auditoria
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		UserID:   audit.Ptr(in.UserID),
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: audit.Ptr(ap.ID),
		Metadata: map[string]any{"persisted": confirmation.Persisted},
	})

	return confirmation, nil
}

// resolve loads the service and barber. When the catalog is unreachable
// the built-in defaults stand in, so ids unknown to both are rejected
// before they can reach the database as a foreign key error.
func (uc *BookAppointment) resolve(ctx context.Context, serviceID, barberID uint) (*models.Service, *models.Barber, error) {
	service, err := uc.catalog.GetService(ctx, serviceID)
	if err != nil {
		if _, business := httperr.BusinessCode(err); business {
			return nil, nil, err
		}
		d, ok := findDefaultService(serviceID)
		if !ok {
			return nil, nil, httperr.ErrBusiness("service_not_found")
		}
		service = &d
	}

	barber, err := uc.catalog.GetBarber(ctx, barberID)
	if err != nil {
		if _, business := httperr.BusinessCode(err); business {
			return nil, nil, err
		}
		d, ok := findDefaultBarber(barberID)
		if !ok {
			return nil, nil, httperr.ErrBusiness("barber_not_found")
		}
		barber = &d
	}

	return service, barber, nil
}

// sameBooking reports whether a stored row is a retry of want.
func sameBooking(stored, want models.Appointment) bool {
	return stored.UserID == want.UserID &&
		stored.ServiceID == want.ServiceID &&
		stored.BarberID == want.BarberID &&
		stored.StartTime.Equal(want.StartTime)
}
