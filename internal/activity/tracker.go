// Package activity turns user interaction signals into throttled session
// activity updates.
package activity

import (
	"time"
)

type Signal string

const (
	SignalPointer  Signal = "pointer"
	SignalKeyboard Signal = "keyboard"
	SignalTouch    Signal = "touch"
	SignalScroll   Signal = "scroll"
	// SignalRequest is recorded for authenticated API calls.
	SignalRequest Signal = "request"
)

// DefaultThrottle is the minimum spacing between two activity updates.
const DefaultThrottle = time.Second

func ParseSignal(s string) (Signal, bool) {
	switch sig := Signal(s); sig {
	case SignalPointer, SignalKeyboard, SignalTouch, SignalScroll, SignalRequest:
		return sig, true
	}
	return "", false
}

// Session is the part of the session manager the tracker drives.
type Session interface {
	IsSessionValid() bool
	UpdateActivity() bool
}

type Clock interface {
	Now() time.Time
}

// Tracker is not safe for concurrent use; it shares the event loop of the
// session it feeds.
type Tracker struct {
	session  Session
	clock    Clock
	throttle time.Duration
	last     time.Time
}

func NewTracker(session Session, clock Clock, throttle time.Duration) *Tracker {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Tracker{session: session, clock: clock, throttle: throttle}
}

// Track records sig and reports whether it resulted in an activity update.
func (t *Tracker) Track(sig Signal) bool {
	if _, ok := ParseSignal(string(sig)); !ok {
		return false
	}

	now := t.clock.Now()
	if !t.last.IsZero() && now.Sub(t.last) < t.throttle {
		return false
	}
	if !t.session.IsSessionValid() {
		return false
	}
	if !t.session.UpdateActivity() {
		return false
	}

	t.last = now
	return true
}

// Reset forgets the throttle window, e.g. after a new login.
func (t *Tracker) Reset() {
	t.last = time.Time{}
}
