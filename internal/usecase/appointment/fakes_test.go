package appointment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

var errDown = errors.New("database unavailable")

// mockRepo is an in-memory appointment repository. Setting err makes
// every call fail like an unreachable database.
type mockRepo struct {
	err  error
	rows map[string]models.Appointment

	users    map[string]*models.User
	reminded map[string]time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		rows:     make(map[string]models.Appointment),
		users:    make(map[string]*models.User),
		reminded: make(map[string]time.Time),
	}
}

func (m *mockRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[ap.ID]; !ok {
		m.rows[ap.ID] = *ap
	}
	return nil
}

func (m *mockRepo) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	ap, ok := m.rows[id]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	ap.User = m.users[ap.UserID]
	return &ap, nil
}

func (m *mockRepo) ListAppointmentsForUser(_ context.Context, userID string) ([]models.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(func(ap models.Appointment) bool { return ap.UserID == userID }), nil
}

func (m *mockRepo) ListAppointmentsForPeriod(_ context.Context, start, end time.Time) ([]models.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(func(ap models.Appointment) bool {
		return !ap.StartTime.Before(start) && ap.StartTime.Before(end)
	}), nil
}

func (m *mockRepo) ListScheduledBetween(_ context.Context, start, end time.Time) ([]models.Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(func(ap models.Appointment) bool {
		return ap.Status == "scheduled" && ap.StartTime.After(start) && ap.StartTime.Before(end)
	}), nil
}

func (m *mockRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	if m.err != nil {
		return m.err
	}
	m.rows[ap.ID] = *ap
	return nil
}

func (m *mockRepo) DeleteAppointmentForUser(_ context.Context, id, userID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	ap, ok := m.rows[id]
	if !ok || ap.UserID != userID {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *mockRepo) MarkReminded(_ context.Context, id string, at time.Time) error {
	m.reminded[id] = at
	return nil
}

func (m *mockRepo) filter(keep func(models.Appointment) bool) []models.Appointment {
	var out []models.Appointment
	for _, ap := range m.rows {
		if keep(ap) {
			ap.User = m.users[ap.UserID]
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

type mockCatalog struct {
	err      error
	services []models.Service
	barbers  []models.Barber
}

func (m *mockCatalog) ListServices(context.Context) ([]models.Service, error) {
	return m.services, m.err
}

func (m *mockCatalog) ListBarbers(context.Context) ([]models.Barber, error) {
	return m.barbers, m.err
}

func (m *mockCatalog) GetService(_ context.Context, id uint) (*models.Service, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.services {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, httperr.ErrBusiness("service_not_found")
}

func (m *mockCatalog) GetBarber(_ context.Context, id uint) (*models.Barber, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, b := range m.barbers {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, httperr.ErrBusiness("barber_not_found")
}

type mockAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *mockAudit) Dispatch(ev audit.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Action)
	}
	return out
}

func shopCatalog() *mockCatalog {
	return &mockCatalog{
		services: []models.Service{
			{ID: 1, Name: "Corte de Cabelo", Price: 40, Active: true},
			{ID: 2, Name: "Barba", Price: 30, Active: true},
		},
		barbers: []models.Barber{
			{ID: 1, Name: "Sr. Zeca"},
			{ID: 2, Name: "Sr. Mora"},
		},
	}
}
