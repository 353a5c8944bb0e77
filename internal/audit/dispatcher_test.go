package audit

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (m *memorySink) Log(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, zap.NewNop())

	d.Dispatch(Event{Action: "appointment_created", EntityID: Ptr("a1")})
	d.Dispatch(Event{Action: "appointment_cancelled", EntityID: Ptr("a1")})
	d.Close()

	if len(sink.events) != 2 {
		t.Fatalf("events: got %d, want 2", len(sink.events))
	}
	if sink.events[0].Action != "appointment_created" || sink.events[1].Action != "appointment_cancelled" {
		t.Errorf("unexpected order: %+v", sink.events)
	}
}

func TestDispatcherSurvivesSinkErrors(t *testing.T) {
	sink := &memorySink{err: errors.New("db down")}
	d := NewDispatcher(sink, zap.NewNop())

	d.Dispatch(Event{Action: "a"})
	d.Dispatch(Event{Action: "b"})
	d.Close()

	if len(sink.events) != 2 {
		t.Fatalf("events: got %d, want 2", len(sink.events))
	}
}

func TestPtr(t *testing.T) {
	if Ptr("") != nil {
		t.Error("empty string must map to nil")
	}
	if p := Ptr("x"); p == nil || *p != "x" {
		t.Errorf("got %v", p)
	}
}
