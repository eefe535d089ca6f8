package timer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type entry struct {
	timer *time.Timer
	stop  chan struct{}
}

// Loop is the production EventLoop. Callbacks are posted to one goroutine;
// a callback cancelled before it reaches the front of the queue is dropped.
type Loop struct {
	log   zerolog.Logger
	tasks  chan func()
	done   chan struct{}
	exited chan struct{}
	once   sync.Once

	mu      sync.Mutex
	next    Handle
	pending map[Handle]*entry
}

func NewLoop(log zerolog.Logger, queue int) *Loop {
	if queue <= 0 {
		queue = 64
	}
	return &Loop{
		log:     log,
		tasks:   make(chan func(), queue),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
		pending: make(map[Handle]*entry),
	}
}

// Run drains the task queue until ctx is cancelled or Stop is called.
// Call it once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.exited)
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		case task := <-l.tasks:
			l.exec(task)
		}
	}
}

func (l *Loop) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("event loop task panicked")
		}
	}()
	task()
}

// Stop cancels every pending timer and ends Run.
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.done)

		l.mu.Lock()
		defer l.mu.Unlock()
		for h, e := range l.pending {
			e.cancel()
			delete(l.pending, h)
		}
	})
}

// Wait blocks until Run has returned, so no task is still executing.
// It must not be called from the loop itself.
func (l *Loop) Wait() {
	<-l.exited
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) post(task func()) {
	select {
	case l.tasks <- task:
	case <-l.done:
	}
}

func (l *Loop) After(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	h := l.next
	e := &entry{}
	l.pending[h] = e
	e.timer = time.AfterFunc(d, func() {
		l.post(func() {
			if l.take(h) {
				fn()
			}
		})
	})
	return h
}

func (l *Loop) Every(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	h := l.next
	e := &entry{stop: make(chan struct{})}
	l.pending[h] = e

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.post(func() {
					if l.active(h) {
						fn()
					}
				})
			case <-e.stop:
				return
			case <-l.done:
				return
			}
		}
	}()
	return h
}

func (l *Loop) Cancel(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.pending[h]; ok {
		e.cancel()
		delete(l.pending, h)
	}
}

// Pending reports how many handles are still scheduled.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *Loop) take(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.pending[h]; !ok {
		return false
	}
	delete(l.pending, h)
	return true
}

func (l *Loop) active(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[h]
	return ok
}

func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *entry) cancel() {
	if e.timer != nil {
		e.timer.Stop()
	}
	if e.stop != nil {
		close(e.stop)
	}
}
