package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
	"github.com/BruksfildServices01/jacare-do-corte/internal/timezone"
)

// ListTodayAppointments feeds the owner panel: today's bookings from both
// stores with the customer attached, plus count and revenue.
type ListTodayAppointments struct {
	repo   domain.Repository
	outbox outbox.Store
	log    *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewListTodayAppointments(
	repo domain.Repository,
	box outbox.Store,
	log *zap.Logger,
	loc *time.Location,
) *ListTodayAppointments {
	return &ListTodayAppointments{
		repo:   repo,
		outbox: box,
		log:    log,
		loc:    loc,
		now:    time.Now,
	}
}

func (uc *ListTodayAppointments) Execute(ctx context.Context) (*dto.TodaySummary, error) {
	now := uc.now().In(uc.loc)
	start, end := timezone.DayBounds(now, uc.loc)

	// --------------------------------------------------
	// 1. Banco
	// --------------------------------------------------
	rows, err := uc.repo.ListAppointmentsForPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}

	remote := make([]dto.AppointmentView, 0, len(rows))
	for _, ap := range rows {
		remote = append(remote, withCustomer(viewFromModel(ap), ap.User))
	}

	// --------------------------------------------------
	// 2. Outbox (somente hoje)
	// --------------------------------------------------
	var pending []dto.AppointmentView
	entries, err := uc.outbox.List(ctx)
	if err != nil {
		uc.log.Warn("outbox unavailable while listing today", zap.Error(err))
	}
	for _, e := range entries {
		if !e.Visible() || !timezone.SameDay(e.Appointment.StartTime, now, uc.loc) {
			continue
		}
		pending = append(pending, withCustomer(viewFromEntry(e), e.Appointment.User))
	}

	// --------------------------------------------------
	// 3. Resumo
	// --------------------------------------------------
	all := merge(remote, pending)

	var revenue float64
	for _, v := range all {
		revenue += v.Service.Price
	}

	return &dto.TodaySummary{
		Date:         now.Format("2006-01-02"),
		Count:        len(all),
		Revenue:      revenue,
		Appointments: all,
	}, nil
}
