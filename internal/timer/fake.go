package timer

import (
	"context"
	"sync"
	"time"
)

type fakeTimer struct {
	at       time.Time
	interval time.Duration
	fn       func()
}

// Fake is a manually driven EventLoop. Callbacks only run inside Advance,
// on the calling goroutine, in deadline order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	next   Handle
	timers map[Handle]*fakeTimer
}

func NewFake(start time.Time) *Fake {
	return &Fake{
		now:    start,
		timers: make(map[Handle]*fakeTimer),
	}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) After(d time.Duration, fn func()) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.timers[f.next] = &fakeTimer{at: f.now.Add(d), fn: fn}
	return f.next
}

func (f *Fake) Every(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.timers[f.next] = &fakeTimer{at: f.now.Add(interval), interval: interval, fn: fn}
	return f.next
}

func (f *Fake) Cancel(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.timers, h)
}

func (f *Fake) Do(_ context.Context, fn func()) error {
	fn()
	return nil
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		fn, ok := f.popDue(target)
		if !ok {
			break
		}
		fn()
	}

	f.mu.Lock()
	f.now = target
	f.mu.Unlock()
}

func (f *Fake) popDue(target time.Time) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		due   Handle
		timer *fakeTimer
	)
	for h, t := range f.timers {
		if t.at.After(target) {
			continue
		}
		if timer == nil || t.at.Before(timer.at) || (t.at.Equal(timer.at) && h < due) {
			due, timer = h, t
		}
	}
	if timer == nil {
		return nil, false
	}

	f.now = timer.at
	if timer.interval > 0 {
		timer.at = timer.at.Add(timer.interval)
	} else {
		delete(f.timers, due)
	}
	return timer.fn, true
}

// Pending returns the number of outstanding one-shot and recurring handles.
func (f *Fake) Pending() (oneShot, recurring int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.timers {
		if t.interval > 0 {
			recurring++
		} else {
			oneShot++
		}
	}
	return oneShot, recurring
}
