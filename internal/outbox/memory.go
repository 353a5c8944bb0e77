package outbox

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process. Used by tests and when no
// Redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Add(_ context.Context, e Entry) (*Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.entries[e.ID()]; ok {
		return &cur, false, nil
	}
	m.entries[e.ID()] = e
	return &e, true, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *MemoryStore) List(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	m.mu.Unlock()

	sortByEnqueue(out)
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(e *Entry) error) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&e); err != nil {
		return nil, err
	}
	e.Version++
	m.entries[id] = e
	return &e, nil
}

func (m *MemoryStore) RemoveIf(_ context.Context, id string, version int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || e.Version != version {
		return false, nil
	}
	delete(m.entries, id)
	return true, nil
}

var _ Store = (*MemoryStore)(nil)
