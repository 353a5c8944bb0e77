package account

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

type mockRepo struct {
	users  map[string]models.User
	access map[string]models.UserAccess
	prefs  map[string]models.UserPreference
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:  make(map[string]models.User),
		access: make(map[string]models.UserAccess),
		prefs:  make(map[string]models.UserPreference),
	}
}

func (m *mockRepo) CreateUser(_ context.Context, u *models.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return httperr.ErrBusiness("email_already_exists")
		}
	}
	m.users[u.ID] = *u
	m.access[u.ID] = models.UserAccess{UserID: u.ID, Status: "pending"}
	m.prefs[u.ID] = models.UserPreference{UserID: u.ID, Notifications: true}
	return nil
}

func (m *mockRepo) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	return &u, nil
}

func (m *mockRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, httperr.ErrBusiness("user_not_found")
}

func (m *mockRepo) UpdateProfile(_ context.Context, id, name, phone string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	u.Name, u.Phone = name, phone
	m.users[id] = u
	return &u, nil
}

func (m *mockRepo) SetAvatar(_ context.Context, id, url string) error {
	u := m.users[id]
	u.AvatarURL = url
	m.users[id] = u
	return nil
}

func (m *mockRepo) GetAccess(_ context.Context, userID string) (*models.UserAccess, error) {
	a, ok := m.access[userID]
	if !ok {
		return &models.UserAccess{UserID: userID, Status: "pending"}, nil
	}
	return &a, nil
}

func (m *mockRepo) SaveAccess(_ context.Context, a *models.UserAccess) error {
	m.access[a.UserID] = *a
	return nil
}

func (m *mockRepo) GetPreferences(_ context.Context, userID string) (*models.UserPreference, error) {
	p, ok := m.prefs[userID]
	if !ok {
		return &models.UserPreference{UserID: userID, Notifications: true}, nil
	}
	return &p, nil
}

func (m *mockRepo) SavePreferences(_ context.Context, p *models.UserPreference) error {
	m.prefs[p.UserID] = *p
	return nil
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

type mockUploader struct {
	key  string
	body []byte
}

func (m *mockUploader) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	m.key, m.body = key, body
	return "https://cdn.test/" + key, nil
}
