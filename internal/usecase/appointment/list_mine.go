package appointment

import (
	"context"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
)

type ListMyAppointments struct {
	repo   domain.Repository
	outbox outbox.Store
	log    *zap.Logger
}

func NewListMyAppointments(
	repo domain.Repository,
	box outbox.Store,
	log *zap.Logger,
) *ListMyAppointments {
	return &ListMyAppointments{
		repo:   repo,
		outbox: box,
		log:    log,
	}
}

func (uc *ListMyAppointments) Execute(
	ctx context.Context,
	userID string,
) ([]dto.AppointmentView, error) {

	rows, err := uc.repo.ListAppointmentsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	remote := make([]dto.AppointmentView, 0, len(rows))
	for _, ap := range rows {
		remote = append(remote, viewFromModel(ap))
	}

	entries, err := outbox.ListForUser(ctx, uc.outbox, userID)
	if err != nil {
		// the remote list is still useful without pending entries
		uc.log.Warn("outbox unavailable while listing appointments", zap.Error(err))
		return remote, nil
	}

	pending := make([]dto.AppointmentView, 0, len(entries))
	for _, e := range entries {
		pending = append(pending, viewFromEntry(e))
	}

	return merge(remote, pending), nil
}
