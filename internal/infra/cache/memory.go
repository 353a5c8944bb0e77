package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory backs every store in this package in process. Used by tests
// and when the API runs without Redis.
type Memory struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time
}

type item struct {
	value   string
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]item), now: time.Now}
}

func (m *Memory) get(key string) (string, bool) {
	it, ok := m.items[key]
	if !ok {
		return "", false
	}
	if !it.expires.IsZero() && !m.now().Before(it.expires) {
		delete(m.items, key)
		return "", false
	}
	return it.value, true
}

func (m *Memory) set(key, value string, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.items[key] = item{value: value, expires: exp}
}

func (m *Memory) Save(_ context.Context, email, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(prefixOTP+email, code, ttl)
	delete(m.items, prefixOTPFail+email)
	return nil
}

func (m *Memory) Consume(_ context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	codeKey, failKey := prefixOTP+email, prefixOTPFail+email
	stored, ok := m.get(codeKey)
	if !ok {
		return false, nil
	}

	if stored != code {
		misses := 1
		if v, ok := m.get(failKey); ok {
			misses, _ = strconv.Atoi(v)
			misses++
		}
		if misses >= MaxCodeMisses {
			delete(m.items, codeKey)
			delete(m.items, failKey)
			return false, nil
		}
		// the counter lives as long as the code
		m.items[failKey] = item{value: strconv.Itoa(misses), expires: m.items[codeKey].expires}
		return false, nil
	}

	delete(m.items, codeKey)
	delete(m.items, failKey)
	return true, nil
}

func (m *Memory) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(prefixRevoked+tokenID, "1", ttl)
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(prefixRevoked + tokenID)
	return ok, nil
}

func (m *Memory) Claim(_ context.Context, appointmentID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.get(prefixReminder + appointmentID); ok {
		return false, nil
	}
	m.set(prefixReminder+appointmentID, "1", ttl)
	return true, nil
}
