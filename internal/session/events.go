package session

import (
	"time"

	"kaizen-online/internal/models"
)

type EventKind string

const (
	EventCreated   EventKind = "session_created"
	EventWarning   EventKind = "session_warning"
	EventExtended  EventKind = "session_extended"
	EventExpired   EventKind = "session_expired"
	EventDestroyed EventKind = "session_destroyed"
)

// Event is what a Manager tells its subscribers. Session is a snapshot
// taken when the event fired; Remaining is set for warnings.
type Event struct {
	Kind      EventKind
	Session   models.Session
	Remaining time.Duration
}

// Handlers is one subscription. Nil fields are skipped.
type Handlers struct {
	OnCreated   func(ev Event)
	OnWarning   func(ev Event)
	OnExtended  func(ev Event)
	OnExpired   func(ev Event)
	OnDestroyed func(ev Event)
}

// HandlerFunc subscribes fn to every event kind.
func HandlerFunc(fn func(ev Event)) Handlers {
	return Handlers{
		OnCreated:   fn,
		OnWarning:   fn,
		OnExtended:  fn,
		OnExpired:   fn,
		OnDestroyed: fn,
	}
}

func (h Handlers) dispatch(ev Event) {
	var fn func(Event)
	switch ev.Kind {
	case EventCreated:
		fn = h.OnCreated
	case EventWarning:
		fn = h.OnWarning
	case EventExtended:
		fn = h.OnExtended
	case EventExpired:
		fn = h.OnExpired
	case EventDestroyed:
		fn = h.OnDestroyed
	}
	if fn != nil {
		fn(ev)
	}
}

type subscriber struct {
	id       int
	handlers Handlers
}

type subscribers struct {
	next int
	list []subscriber
}

func (s *subscribers) add(h Handlers) int {
	s.next++
	s.list = append(s.list, subscriber{id: s.next, handlers: h})
	return s.next
}

func (s *subscribers) remove(id int) {
	for i, sub := range s.list {
		if sub.id == id {
			s.list = append(s.list[:i:i], s.list[i+1:]...)
			return
		}
	}
}

// publish delivers to a snapshot of the list, so handlers may subscribe or
// unsubscribe while being called.
func (s *subscribers) publish(ev Event) {
	snapshot := make([]subscriber, len(s.list))
	copy(snapshot, s.list)
	for _, sub := range snapshot {
		sub.handlers.dispatch(ev)
	}
}
