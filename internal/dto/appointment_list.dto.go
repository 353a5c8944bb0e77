package dto

import "time"

type ServiceRef struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration_minutes,omitempty"`
}

type BarberRef struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type CustomerRef struct {
	Name  string `json:"full_name"`
	Phone string `json:"phone"`
}

// AppointmentView is the single response shape for appointment rows,
// whether they come from the database or from the outbox.
type AppointmentView struct {
	ID          string       `json:"id"`
	StartTime   time.Time    `json:"start_time"`
	Status      string       `json:"status"`
	Service     ServiceRef   `json:"service"`
	Barber      BarberRef    `json:"barber"`
	Customer    *CustomerRef `json:"customer,omitempty"`
	PendingSync bool         `json:"pending_sync"`
}

type TodaySummary struct {
	Date         string            `json:"date"`
	Count        int               `json:"count"`
	Revenue      float64           `json:"revenue"`
	Appointments []AppointmentView `json:"appointments"`
}

// BookingConfirmation is what the confirmation screen renders.
type BookingConfirmation struct {
	AppointmentID string    `json:"appointment_id"`
	ServiceName   string    `json:"service_name"`
	BarberName    string    `json:"barber_name"`
	StartTime     time.Time `json:"start_time"`
	Date          string    `json:"date"`
	Status        string    `json:"status"`
	Persisted     string    `json:"persisted"`
}

// StatusChange reports which stores accepted an admin status patch.
type StatusChange struct {
	ID          string           `json:"id"`
	Status      string           `json:"status"`
	RemoteOK    bool             `json:"remote_ok"`
	FallbackOK  bool             `json:"fallback_ok"`
	Appointment *AppointmentView `json:"appointment,omitempty"`
}
