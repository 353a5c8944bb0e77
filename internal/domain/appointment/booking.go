package appointment

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
)

// BookingInput is what the schedule screen submits.
type BookingInput struct {
	UserID    string
	ServiceID uint
	BarberID  uint
	Day       int
	Time      string
	RequestID string
}

// Validate rejects bookings with missing fields before anything is stored.
func (in BookingInput) Validate(slots []string) error {
	if in.UserID == "" || in.ServiceID == 0 || in.BarberID == 0 || in.Day == 0 || strings.TrimSpace(in.Time) == "" {
		return httperr.ErrBusiness("missing_fields")
	}
	if !IsOfferedSlot(slots, in.Time) {
		return httperr.ErrBusiness("invalid_time")
	}
	return nil
}

func IsOfferedSlot(slots []string, hm string) bool {
	for _, s := range slots {
		if s == hm {
			return true
		}
	}
	return false
}

// StartTime builds "<year>-<month>-<day>T<HH:MM>:00" for the month of now,
// in now's location.
func StartTime(now time.Time, day int, hm string) (time.Time, error) {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if day < 1 || day > lastDay {
		return time.Time{}, httperr.ErrBusiness("invalid_day")
	}

	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_time")
	}

	return time.Date(
		now.Year(), now.Month(), day,
		t.Hour(), t.Minute(), 0, 0,
		now.Location(),
	), nil
}
