package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

type Catalog interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	ListBarbers(ctx context.Context) ([]models.Barber, error)

	GetService(ctx context.Context, id uint) (*models.Service, error)
	GetBarber(ctx context.Context, id uint) (*models.Barber, error)
}

type Repository interface {
	// -------- Create --------
	// CreateAppointment is idempotent on ap.ID.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Read --------
	GetAppointment(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	ListAppointmentsForUser(
		ctx context.Context,
		userID string,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListScheduledBetween(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- State change --------
	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	DeleteAppointmentForUser(
		ctx context.Context,
		id string,
		userID string,
	) (bool, error)

	MarkReminded(
		ctx context.Context,
		id string,
		at time.Time,
	) error
}
