package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
)

func pendingEntry(id, userID string, start time.Time) outbox.Entry {
	return outbox.Entry{
		Appointment: models.Appointment{
			ID: id, UserID: userID, ServiceID: 2, BarberID: 1,
			StartTime: start, Status: "scheduled",
		},
		ServiceName:  "Barba",
		ServicePrice: 30,
		BarberName:   "Sr. Zeca",
		EnqueuedAt:   start,
	}
}

func TestListMyAppointmentsMergesOutbox(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	box := outbox.NewMemoryStore()
	base := time.Date(2025, 12, 10, 9, 0, 0, 0, time.UTC)

	repo.rows["r1"] = models.Appointment{ID: "r1", UserID: "u1", StartTime: base.Add(2 * time.Hour), Status: "scheduled",
		Service: &models.Service{ID: 1, Name: "Corte de Cabelo", Price: 40}}
	repo.rows["other"] = models.Appointment{ID: "other", UserID: "u2", StartTime: base}

	_, _, _ = box.Add(ctx, pendingEntry("p1", "u1", base))
	// same id as a stored row: the database copy wins
	_, _, _ = box.Add(ctx, pendingEntry("r1", "u1", base))
	_, _, _ = box.Add(ctx, pendingEntry("p2", "u2", base))

	got, err := NewListMyAppointments(repo, box, zap.NewNop()).Execute(ctx, "u1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 appointments, got %d: %+v", len(got), got)
	}
	if got[0].ID != "p1" || !got[0].PendingSync {
		t.Errorf("first should be pending p1: %+v", got[0])
	}
	if got[1].ID != "r1" || got[1].PendingSync || got[1].Service.Name != "Corte de Cabelo" {
		t.Errorf("second should be remote r1: %+v", got[1])
	}
}

func TestCancelMyAppointment(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	box := outbox.NewMemoryStore()
	rec := &mockAudit{}
	uc := NewCancelMyAppointment(repo, box, rec)

	repo.rows["r1"] = models.Appointment{ID: "r1", UserID: "u1"}
	_, _, _ = box.Add(ctx, pendingEntry("p1", "u1", time.Now()))

	if err := uc.Execute(ctx, "u1", "r1"); err != nil {
		t.Fatalf("cancel remote: %v", err)
	}
	if _, ok := repo.rows["r1"]; ok {
		t.Error("row should be deleted")
	}

	if err := uc.Execute(ctx, "u1", "p1"); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if e, err := box.Get(ctx, "p1"); err == nil && !e.Deleted {
		t.Errorf("pending copy should be tombstoned: %+v", e)
	}

	list, _ := NewListMyAppointments(repo, box, zap.NewNop()).Execute(ctx, "u1")
	if len(list) != 0 {
		t.Errorf("list after cancel: %+v", list)
	}

	if len(rec.actions()) != 2 {
		t.Errorf("audit: %v", rec.actions())
	}
}

func TestCancelMyAppointmentNotOwned(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	box := outbox.NewMemoryStore()
	repo.rows["r1"] = models.Appointment{ID: "r1", UserID: "u2"}
	_, _, _ = box.Add(ctx, pendingEntry("p1", "u2", time.Now()))

	uc := NewCancelMyAppointment(repo, box, &mockAudit{})
	for _, id := range []string{"r1", "p1", "missing"} {
		if err := uc.Execute(ctx, "u1", id); !httperr.IsBusiness(err, "appointment_not_found") {
			t.Errorf("%s: expected appointment_not_found, got %v", id, err)
		}
	}
	if _, ok := repo.rows["r1"]; !ok {
		t.Error("foreign row must survive")
	}
}

func TestListTodayAppointments(t *testing.T) {
	ctx := context.Background()
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	now := time.Date(2025, 12, 3, 8, 0, 0, 0, loc)

	repo := newMockRepo()
	box := outbox.NewMemoryStore()
	repo.users["u1"] = &models.User{ID: "u1", Name: "João", Phone: "41999990000"}

	repo.rows["a"] = models.Appointment{ID: "a", UserID: "u1", StartTime: now.Add(2 * time.Hour),
		Service: &models.Service{ID: 1, Name: "Corte de Cabelo", Price: 40}}
	repo.rows["b"] = models.Appointment{ID: "b", UserID: "ghost", StartTime: now.Add(6 * time.Hour),
		Service: &models.Service{ID: 3, Name: "Corte + Barba", Price: 65}}
	repo.rows["tomorrow"] = models.Appointment{ID: "tomorrow", UserID: "u1", StartTime: now.AddDate(0, 0, 1),
		Service: &models.Service{ID: 1, Price: 40}}

	_, _, _ = box.Add(ctx, pendingEntry("p", "u9", now.Add(time.Hour)))
	_, _, _ = box.Add(ctx, pendingEntry("a", "u1", now.Add(2*time.Hour)))
	_, _, _ = box.Add(ctx, pendingEntry("old", "u9", now.AddDate(0, 0, -1)))

	uc := NewListTodayAppointments(repo, box, zap.NewNop(), loc)
	uc.now = func() time.Time { return now }

	got, err := uc.Execute(ctx)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if got.Date != "2025-12-03" {
		t.Errorf("date: %s", got.Date)
	}
	if got.Count != 3 {
		t.Fatalf("count: %d %+v", got.Count, got.Appointments)
	}
	if got.Revenue != 135 {
		t.Errorf("revenue: %v", got.Revenue)
	}

	byID := map[string]string{}
	for _, v := range got.Appointments {
		byID[v.ID] = v.Customer.Name
	}
	if byID["a"] != "João" || byID["b"] != placeholderCustomer || byID["p"] != placeholderCustomer {
		t.Errorf("customers: %v", byID)
	}
}

func TestSetAppointmentStatusBothStores(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	box := outbox.NewMemoryStore()
	repo.rows["a"] = models.Appointment{ID: "a", UserID: "u1", Status: "scheduled"}
	_, _, _ = box.Add(ctx, pendingEntry("a", "u1", time.Now()))

	got, err := NewSetAppointmentStatus(repo, box, &mockAudit{}, zap.NewNop()).
		Execute(ctx, "admin", "a", domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !got.RemoteOK || !got.FallbackOK {
		t.Errorf("flags: %+v", got)
	}
	if repo.rows["a"].Status != "confirmed" {
		t.Errorf("remote status: %s", repo.rows["a"].Status)
	}
	e, _ := box.Get(ctx, "a")
	if e.Appointment.Status != "confirmed" || !e.Patched {
		t.Errorf("outbox entry: %+v", e)
	}
	if got.Appointment == nil || got.Appointment.PendingSync {
		t.Errorf("view should come from the database: %+v", got.Appointment)
	}
}

func TestSetAppointmentStatusRemoteDown(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	repo.err = errDown
	box := outbox.NewMemoryStore()
	_, _, _ = box.Add(ctx, pendingEntry("p", "u1", time.Now()))

	uc := NewSetAppointmentStatus(repo, box, &mockAudit{}, zap.NewNop())

	got, err := uc.Execute(ctx, "admin", "p", domain.StatusCancelled)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.RemoteOK || !got.FallbackOK {
		t.Errorf("flags: %+v", got)
	}
	if got.Appointment == nil || got.Appointment.Status != "cancelled" {
		t.Errorf("view: %+v", got.Appointment)
	}

	if _, err := uc.Execute(ctx, "admin", "missing", domain.StatusCancelled); err != errDown {
		t.Errorf("expected infrastructure error, got %v", err)
	}
}

func TestSetAppointmentStatusErrors(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	repo.rows["done"] = models.Appointment{ID: "done", Status: "completed"}
	uc := NewSetAppointmentStatus(repo, outbox.NewMemoryStore(), &mockAudit{}, zap.NewNop())

	if _, err := uc.Execute(ctx, "admin", "missing", domain.StatusConfirmed); !httperr.IsBusiness(err, "appointment_not_found") {
		t.Errorf("missing: %v", err)
	}
	if _, err := uc.Execute(ctx, "admin", "done", domain.StatusCancelled); !httperr.IsBusiness(err, "invalid_state") {
		t.Errorf("terminal: %v", err)
	}
}

func TestGetCatalogFallback(t *testing.T) {
	ctx := context.Background()

	live := NewGetCatalog(shopCatalog(), zap.NewNop(), testSlots).Execute(ctx)
	if live.Fallback || len(live.Services) != 2 {
		t.Errorf("live catalog: %+v", live)
	}

	down := NewGetCatalog(&mockCatalog{err: errDown}, zap.NewNop(), testSlots).Execute(ctx)
	if !down.Fallback || len(down.Services) != 4 || len(down.Barbers) != 4 {
		t.Errorf("fallback catalog: %+v", down)
	}
	for i := 1; i < len(down.Services); i++ {
		if down.Services[i-1].Price > down.Services[i].Price {
			t.Errorf("default services should be ordered by price: %+v", down.Services)
		}
	}
	if len(down.Slots) != 5 {
		t.Errorf("slots: %v", down.Slots)
	}

	empty := NewGetCatalog(&mockCatalog{}, zap.NewNop(), testSlots).Execute(ctx)
	if !empty.Fallback {
		t.Error("empty tables should use defaults")
	}
}

// gatedRepo blocks CreateAppointment until gate closes, signalling
// entered the first time.
type gatedRepo struct {
	*mockRepo
	gate    chan struct{}
	entered chan struct{}
}

func (g *gatedRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.gate
	return g.mockRepo.CreateAppointment(ctx, ap)
}

// replayDuring holds a replay inside its remote insert while change runs.
func replayDuring(t *testing.T, repo *mockRepo, box outbox.Store, change func()) {
	t.Helper()
	g := &gatedRepo{mockRepo: repo, gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	r := outbox.NewReplayer(box, g, zap.NewNop(), time.Second)

	done := make(chan error, 1)
	go func() {
		_, err := r.ReplayOnce(context.Background())
		done <- err
	}()

	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("replay never reached the database")
	}
	change()
	close(g.gate)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not finish")
	}
}

func TestCancelDuringReplay(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	box := outbox.NewMemoryStore()
	_, _, _ = box.Add(ctx, pendingEntry("p1", "u1", time.Now()))

	replayDuring(t, repo, box, func() {
		if err := NewCancelMyAppointment(repo, box, &mockAudit{}).Execute(ctx, "u1", "p1"); err != nil {
			t.Errorf("cancel: %v", err)
		}
	})

	if _, ok := repo.rows["p1"]; ok {
		t.Error("cancelled appointment came back after replay")
	}
	if _, err := box.Get(ctx, "p1"); !errors.Is(err, outbox.ErrNotFound) {
		t.Errorf("outbox entry left behind: %v", err)
	}
	if list, _ := NewListMyAppointments(repo, box, zap.NewNop()).Execute(ctx, "u1"); len(list) != 0 {
		t.Errorf("list after cancel: %+v", list)
	}
}

func TestConfirmDuringReplay(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	box := outbox.NewMemoryStore()
	_, _, _ = box.Add(ctx, pendingEntry("p1", "u1", time.Now()))

	replayDuring(t, repo, box, func() {
		got, err := NewSetAppointmentStatus(repo, box, &mockAudit{}, zap.NewNop()).
			Execute(ctx, "admin", "p1", domain.StatusConfirmed)
		if err != nil {
			t.Errorf("confirm: %v", err)
			return
		}
		if !got.FallbackOK {
			t.Errorf("flags: %+v", got)
		}
	})

	if repo.rows["p1"].Status != "confirmed" {
		t.Errorf("stored status after replay: %q", repo.rows["p1"].Status)
	}
	if _, err := box.Get(ctx, "p1"); !errors.Is(err, outbox.ErrNotFound) {
		t.Errorf("outbox entry left behind: %v", err)
	}
}
