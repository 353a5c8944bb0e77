package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	"github.com/BruksfildServices01/jacare-do-corte/internal/auth"
	"github.com/BruksfildServices01/jacare-do-corte/internal/domain/access"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/infra/cache"
	"github.com/BruksfildServices01/jacare-do-corte/internal/middleware"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
	"github.com/BruksfildServices01/jacare-do-corte/internal/session"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/account"
	ucAppointment "github.com/BruksfildServices01/jacare-do-corte/internal/usecase/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/reminder"
)

const secret = "handler-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// ======================================================
// FAKES
// ======================================================

type fakeAppointments struct {
	down bool
	rows map[string]models.Appointment
}

func (f *fakeAppointments) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	if f.down {
		return errors.New("connection refused")
	}
	if _, ok := f.rows[ap.ID]; !ok {
		f.rows[ap.ID] = *ap
	}
	return nil
}

func (f *fakeAppointments) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	ap, ok := f.rows[id]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return &ap, nil
}

func (f *fakeAppointments) ListAppointmentsForUser(_ context.Context, userID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range f.rows {
		if ap.UserID == userID {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (f *fakeAppointments) ListAppointmentsForPeriod(context.Context, time.Time, time.Time) ([]models.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointments) ListScheduledBetween(context.Context, time.Time, time.Time) ([]models.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointments) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	f.rows[ap.ID] = *ap
	return nil
}

func (f *fakeAppointments) DeleteAppointmentForUser(_ context.Context, id, userID string) (bool, error) {
	ap, ok := f.rows[id]
	if !ok || ap.UserID != userID {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func (f *fakeAppointments) MarkReminded(context.Context, string, time.Time) error { return nil }

type fakeCatalog struct{}

func (fakeCatalog) ListServices(context.Context) ([]models.Service, error) {
	return nil, errors.New("catalog down")
}

func (fakeCatalog) ListBarbers(context.Context) ([]models.Barber, error) {
	return nil, errors.New("catalog down")
}

func (fakeCatalog) GetService(context.Context, uint) (*models.Service, error) {
	return nil, errors.New("catalog down")
}

func (fakeCatalog) GetBarber(context.Context, uint) (*models.Barber, error) {
	return nil, errors.New("catalog down")
}

type fakeAccounts struct {
	users  map[string]models.User
	access map[string]models.UserAccess
	prefs  map[string]models.UserPreference
}

func (f *fakeAccounts) CreateUser(_ context.Context, u *models.User) error {
	f.users[u.ID] = *u
	f.access[u.ID] = models.UserAccess{UserID: u.ID, Status: "pending"}
	return nil
}

func (f *fakeAccounts) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	return &u, nil
}

func (f *fakeAccounts) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, httperr.ErrBusiness("user_not_found")
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, id, name, phone string) (*models.User, error) {
	u := f.users[id]
	u.Name, u.Phone = name, phone
	f.users[id] = u
	return &u, nil
}

func (f *fakeAccounts) SetAvatar(context.Context, string, string) error { return nil }

func (f *fakeAccounts) GetAccess(_ context.Context, userID string) (*models.UserAccess, error) {
	a, ok := f.access[userID]
	if !ok {
		return &models.UserAccess{UserID: userID, Status: "pending"}, nil
	}
	return &a, nil
}

func (f *fakeAccounts) SaveAccess(_ context.Context, a *models.UserAccess) error {
	f.access[a.UserID] = *a
	return nil
}

func (f *fakeAccounts) GetPreferences(_ context.Context, userID string) (*models.UserPreference, error) {
	p, ok := f.prefs[userID]
	if !ok {
		return &models.UserPreference{UserID: userID, Notifications: true}, nil
	}
	return &p, nil
}

func (f *fakeAccounts) SavePreferences(_ context.Context, p *models.UserPreference) error {
	f.prefs[p.UserID] = *p
	return nil
}

type fakeAutomations struct{ active bool }

func (f fakeAutomations) IsActive(context.Context, string) (bool, error) { return f.active, nil }

type nopAudit struct{}

func (nopAudit) Dispatch(audit.Event) {}

type noStorage struct{}

func (noStorage) Put(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("no storage in tests")
}

// ======================================================
// ROUTER
// ======================================================

type env struct {
	r        *gin.Engine
	appts    *fakeAppointments
	accounts *fakeAccounts
	outbox   *outbox.MemoryStore
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log := zap.NewNop()
	mem := cache.NewMemory()
	hub := session.NewHub()
	loc := time.UTC
	slots := []string{"09:00", "10:00", "14:00", "15:00", "16:00"}

	e := &env{
		r:     gin.New(),
		appts: &fakeAppointments{rows: make(map[string]models.Appointment)},
		accounts: &fakeAccounts{
			users: map[string]models.User{
				"ok":      {ID: "ok", Name: "Ana", Email: "ana@example.com"},
				"pending": {ID: "pending", Name: "Bia", Email: "bia@example.com"},
			},
			access: map[string]models.UserAccess{
				"ok":      {UserID: "ok", Status: "approved"},
				"pending": {UserID: "pending", Status: "pending"},
			},
			prefs: make(map[string]models.UserPreference),
		},
		outbox: outbox.NewMemoryStore(),
	}

	appointments := NewAppointmentHandler(
		ucAppointment.NewBookAppointment(e.appts, fakeCatalog{}, e.outbox, nopAudit{}, log, slots, loc),
		ucAppointment.NewGetCatalog(fakeCatalog{}, log, slots),
		ucAppointment.NewListMyAppointments(e.appts, e.outbox, log),
		ucAppointment.NewCancelMyAppointment(e.appts, e.outbox, nopAudit{}),
		log,
	)
	me := NewMeHandler(account.NewProfile(e.accounts, noStorage{}, nopAudit{}), hub, log)
	payment := NewPaymentHandler(account.NewPayment(e.accounts, hub, nopAudit{}, log, account.PaymentSettings{
		PixKey: "pix@jacare.com", Price: "15,00", WhatsAppNumber: "554199904961",
	}))
	authH := NewAuthHandler(account.NewAuth(e.accounts, mem, mem, hub, nopAudit{}, log, secret, func(string) bool { return false }), log, false)
	cron := NewCronHandler(reminder.NewSendReminders(e.appts, fakeAutomations{active: true}, mem, log, loc), log)

	api := e.r.Group("/api")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/demo", authH.Demo)
	api.GET("/services", appointments.Services)
	api.GET("/cron/reminders", middleware.CronSecret("s3cret"), cron.Reminders)

	secured := api.Group("/", middleware.AuthMiddleware(secret, mem, log))
	exempt := secured.Group("/", middleware.AccessGate(e.accounts, access.Surface{PaymentExempt: true}, log))
	exempt.GET("/session", me.Session)
	exempt.POST("/payment/notify", payment.Notify)

	gated := secured.Group("/", middleware.AccessGate(e.accounts, access.Surface{}, log))
	gated.POST("/appointments", appointments.Book)
	gated.GET("/me/appointments", appointments.ListMine)
	gated.DELETE("/me/appointments/:id", appointments.CancelMine)
	gated.GET("/me/preferences", me.GetPreferences)
	gated.PUT("/me/preferences", me.PutPreferences)

	return e
}

func (e *env) call(t *testing.T, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		tok, err := auth.MakeToken(uid, uid+"@example.com", auth.RoleClient, secret, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

// ======================================================
// TESTS
// ======================================================

func TestBookRemoteAndFallback(t *testing.T) {
	e := newEnv(t)
	req := gin.H{"service_id": 1, "barber_id": 1, "day": 1, "time": "09:00"}

	w := e.call(t, http.MethodPost, "/api/appointments", "ok", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("remote: %d %s", w.Code, w.Body.String())
	}
	var got struct {
		AppointmentID string `json:"appointment_id"`
		ServiceName   string `json:"service_name"`
		Persisted     string `json:"persisted"`
	}
	decode(t, w, &got)
	if got.Persisted != "remote" || got.ServiceName != "Corte de Cabelo" {
		t.Errorf("confirmation: %+v", got)
	}

	e.appts.down = true
	w = e.call(t, http.MethodPost, "/api/appointments", "ok", req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("fallback: %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &got)
	if got.Persisted != "fallback" {
		t.Errorf("persisted: %s", got.Persisted)
	}
	if _, err := e.outbox.Get(context.Background(), got.AppointmentID); err != nil {
		t.Errorf("outbox entry missing: %v", err)
	}

	w = e.call(t, http.MethodGet, "/api/me/appointments", "ok", nil)
	var list struct {
		Total int `json:"total"`
	}
	decode(t, w, &list)
	if list.Total != 2 {
		t.Errorf("list should include the pending booking: %s", w.Body.String())
	}
}

func TestBookRejectsUnknownIDsAndReusedRequestID(t *testing.T) {
	e := newEnv(t)

	w := e.call(t, http.MethodPost, "/api/appointments", "ok", gin.H{"service_id": 999, "barber_id": 999, "day": 3, "time": "09:00"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown ids: %d %s", w.Code, w.Body.String())
	}
	var body httperr.HTTPError
	decode(t, w, &body)
	if body.Code != "service_not_found" {
		t.Errorf("code: %+v", body)
	}

	const rid = "5d3c6a1e-2b7f-4e0a-9c1d-8f6e5a4b3c2d"
	first := gin.H{"service_id": 1, "barber_id": 1, "day": 3, "time": "09:00", "client_request_id": rid}
	if w := e.call(t, http.MethodPost, "/api/appointments", "ok", first); w.Code != http.StatusCreated {
		t.Fatalf("first: %d %s", w.Code, w.Body.String())
	}
	if w := e.call(t, http.MethodPost, "/api/appointments", "ok", first); w.Code != http.StatusCreated {
		t.Fatalf("retry: %d %s", w.Code, w.Body.String())
	}

	other := gin.H{"service_id": 2, "barber_id": 1, "day": 4, "time": "10:00", "client_request_id": rid}
	w = e.call(t, http.MethodPost, "/api/appointments", "ok", other)
	if w.Code != http.StatusConflict {
		t.Fatalf("reused id: %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &body)
	if body.Code != "request_id_conflict" {
		t.Errorf("code: %+v", body)
	}
	if e.appts.rows[rid].ServiceID != 1 {
		t.Errorf("stored row changed: %+v", e.appts.rows[rid])
	}
}

func TestBookMissingFields(t *testing.T) {
	e := newEnv(t)

	w := e.call(t, http.MethodPost, "/api/appointments", "ok", gin.H{"service_id": 1, "day": 3})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
	var body httperr.HTTPError
	decode(t, w, &body)
	if body.Code != "missing_fields" || body.Message != "Por favor, preencha todos os campos do agendamento." {
		t.Errorf("body: %+v", body)
	}
	if len(e.appts.rows) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestBookRequiresApproval(t *testing.T) {
	e := newEnv(t)

	w := e.call(t, http.MethodPost, "/api/appointments", "pending", gin.H{"service_id": 1})
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status: %d", w.Code)
	}
	var body httperr.HTTPError
	decode(t, w, &body)
	if body.Redirect != "/payment" {
		t.Errorf("redirect: %+v", body)
	}

	if w := e.call(t, http.MethodGet, "/api/session", "pending", nil); w.Code != http.StatusOK {
		t.Errorf("session is payment-exempt: %d", w.Code)
	}
}

func TestCancelMine(t *testing.T) {
	e := newEnv(t)
	e.appts.rows["a1"] = models.Appointment{ID: "a1", UserID: "ok"}

	if w := e.call(t, http.MethodDelete, "/api/me/appointments/a1", "ok", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := e.call(t, http.MethodDelete, "/api/me/appointments/a1", "ok", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: %d", w.Code)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	e := newEnv(t)

	w := e.call(t, http.MethodPut, "/api/me/preferences", "ok", gin.H{"dark_mode": true, "notifications": false})
	if w.Code != http.StatusOK {
		t.Fatalf("put: %d %s", w.Code, w.Body.String())
	}

	w = e.call(t, http.MethodGet, "/api/me/preferences", "ok", nil)
	var p struct {
		DarkMode      bool `json:"dark_mode"`
		Notifications bool `json:"notifications"`
	}
	decode(t, w, &p)
	if !p.DarkMode || p.Notifications {
		t.Errorf("read back: %+v", p)
	}

	if w := e.call(t, http.MethodPut, "/api/me/preferences", "ok", gin.H{"dark_mode": true}); w.Code != http.StatusBadRequest {
		t.Errorf("partial body: %d", w.Code)
	}
}

func TestPaymentNotifyLink(t *testing.T) {
	e := newEnv(t)

	w := e.call(t, http.MethodPost, "/api/payment/notify", "pending", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("notify: %d %s", w.Code, w.Body.String())
	}
	var notice struct {
		Status      string `json:"status"`
		WhatsAppURL string `json:"whatsapp_url"`
	}
	decode(t, w, &notice)
	if notice.Status != "pending" || notice.WhatsAppURL == "" {
		t.Errorf("notice: %+v", notice)
	}
}

func TestCatalogFallback(t *testing.T) {
	e := newEnv(t)

	w := e.call(t, http.MethodGet, "/api/services", "", nil)
	var body struct {
		Services []models.Service `json:"services"`
		Fallback bool             `json:"fallback"`
	}
	decode(t, w, &body)
	if !body.Fallback || len(body.Services) != 4 || body.Services[0].Name != "Barba" {
		t.Errorf("fallback catalog: %+v", body)
	}
}

func TestCronReminders(t *testing.T) {
	e := newEnv(t)

	if w := e.call(t, http.MethodGet, "/api/cron/reminders", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("without key: %d", w.Code)
	}

	w := e.call(t, http.MethodGet, "/api/cron/reminders?key=s3cret", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("with key: %d", w.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	decode(t, w, &body)
	if body.Message != "No appointments to remind right now." {
		t.Errorf("message: %q", body.Message)
	}
}

func TestRegisterAndDemo(t *testing.T) {
	e := newEnv(t)

	w := e.call(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Caio", "email": "caio@example.com", "password": "segredo", "password_confirmation": "outro",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mismatch: %d", w.Code)
	}
	var body httperr.HTTPError
	decode(t, w, &body)
	if body.Code != "password_mismatch" {
		t.Errorf("code: %+v", body)
	}

	w = e.call(t, http.MethodPost, "/api/auth/demo", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("demo: %d", w.Code)
	}
	var res struct {
		Token   string `json:"token"`
		Session struct {
			Demo bool `json:"demo"`
		} `json:"session"`
	}
	decode(t, w, &res)
	if res.Token == "" || !res.Session.Demo {
		t.Errorf("demo response: %s", w.Body.String())
	}
}
