package appointment

import (
	"sort"

	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
)

const placeholderCustomer = "Cliente"

func viewFromModel(ap models.Appointment) dto.AppointmentView {
	v := dto.AppointmentView{
		ID:        ap.ID,
		StartTime: ap.StartTime,
		Status:    ap.Status,
		Service:   dto.ServiceRef{ID: ap.ServiceID},
		Barber:    dto.BarberRef{ID: ap.BarberID},
	}
	if ap.Service != nil {
		v.Service.Name = ap.Service.Name
		v.Service.Price = ap.Service.Price
		v.Service.DurationMin = ap.Service.DurationMin
	}
	if ap.Barber != nil {
		v.Barber.Name = ap.Barber.Name
		v.Barber.AvatarURL = ap.Barber.AvatarURL
	}
	return v
}

func viewFromEntry(e outbox.Entry) dto.AppointmentView {
	v := viewFromModel(e.Appointment)
	v.Service.Name = e.ServiceName
	v.Service.Price = e.ServicePrice
	v.Barber.Name = e.BarberName
	v.PendingSync = true
	return v
}

// withCustomer attaches the booking user's name and phone, or the
// placeholder when the user is not known to the database.
func withCustomer(v dto.AppointmentView, u *models.User) dto.AppointmentView {
	c := &dto.CustomerRef{Name: placeholderCustomer}
	if u != nil {
		if u.Name != "" {
			c.Name = u.Name
		}
		c.Phone = u.Phone
	}
	v.Customer = c
	return v
}

// merge concatenates remote rows and outbox entries, keeping the remote
// copy when an id is present in both, ordered by start time.
func merge(remote []dto.AppointmentView, pending []dto.AppointmentView) []dto.AppointmentView {
	seen := make(map[string]struct{}, len(remote))
	out := make([]dto.AppointmentView, 0, len(remote)+len(pending))

	for _, v := range remote {
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	for _, v := range pending {
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
