package database

import (
	"context"
	"sync"
	"time"

	"kaizen-online/internal/metrics"

	"github.com/rs/zerolog"
)

const journalWriteTimeout = 5 * time.Second

type EventWriter interface {
	LogSessionEvent(ctx context.Context, arg LogSessionEventParams) error
}

// Journal writes session events in the background. Record never blocks;
// when the queue is full the event is dropped and counted.
type Journal struct {
	writer EventWriter
	log    zerolog.Logger
	queue  chan LogSessionEventParams

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewJournal(writer EventWriter, buffer int, log zerolog.Logger) *Journal {
	if buffer <= 0 {
		buffer = 256
	}
	return &Journal{
		writer: writer,
		log:    log,
		queue:  make(chan LogSessionEventParams, buffer),
	}
}

// Start launches the writer goroutine. Close drains what is queued and
// waits for it.
func (j *Journal) Start() {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		for arg := range j.queue {
			j.write(arg)
		}
	}()
}

func (j *Journal) write(arg LogSessionEventParams) {
	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()

	if err := j.writer.LogSessionEvent(ctx, arg); err != nil {
		j.log.Error().
			Err(err).
			Str("employee_code", arg.EmployeeCode).
			Str("event_type", arg.EventType).
			Msg("failed to write session event")
	}
}

// Record queues arg and reports whether it was accepted. After Close every
// event is refused.
func (j *Journal) Record(arg LogSessionEventParams) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return false
	}

	select {
	case j.queue <- arg:
		return true
	default:
		metrics.JournalDropped.Inc()
		j.log.Warn().
			Str("employee_code", arg.EmployeeCode).
			Str("event_type", arg.EventType).
			Msg("journal queue full, dropping event")
		return false
	}
}

func (j *Journal) Close() {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	j.mu.Unlock()
	j.wg.Wait()
}
