package session

import (
	"context"
	"fmt"

	"kaizen-online/internal/activity"
	"kaizen-online/internal/config"
	"kaizen-online/internal/storage"
	"kaizen-online/internal/timer"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/rs/zerolog"
)

const clientIDLength = 21

// Client is one browser runtime: its session manager and the activity
// tracker feeding it.
type Client struct {
	ID      string
	Manager *Manager
	Tracker *activity.Tracker

	reap timer.Handle
}

// Registry owns the managers of every connected client. All managers share
// the registry's scheduler, so like them it must only be used on the event
// loop. A client whose session expired is destroyed and dropped one
// WarningThreshold later.
type Registry struct {
	kv    storage.KV
	sched timer.Scheduler
	cfg   config.SessionConfig
	log   zerolog.Logger

	newID     func() string
	clients   map[string]*Client
	observers []func(clientID string, ev Event)
}

func NewRegistry(kv storage.KV, sched timer.Scheduler, cfg config.SessionConfig, log zerolog.Logger) (*Registry, error) {
	generateID, err := nanoid.Standard(clientIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client id generator: %w", err)
	}

	return &Registry{
		kv:      kv,
		sched:   sched,
		cfg:     cfg,
		log:     log,
		newID:   generateID,
		clients: make(map[string]*Client),
	}, nil
}

// NewClientID returns a fresh identifier not in use by a live client.
func (r *Registry) NewClientID() string {
	for {
		id := r.newID()
		if _, taken := r.clients[id]; !taken {
			return id
		}
	}
}

// Get returns the client, creating it on first use. A client whose record
// outlived a restart resumes monitoring here.
func (r *Registry) Get(clientID string) *Client {
	if c, ok := r.clients[clientID]; ok {
		return c
	}

	log := r.log.With().Str("client_id", clientID).Logger()
	m := NewManager(r.cfg, NewStore(r.kv, clientID, log), r.sched, log)
	c := &Client{
		ID:      clientID,
		Manager: m,
		Tracker: activity.NewTracker(m, r.sched, r.cfg.ActivityThrottle),
	}
	r.clients[clientID] = c

	m.Subscribe(HandlerFunc(func(ev Event) {
		if ev.Kind == EventExpired {
			r.scheduleReap(c, ev.Session.ID)
		}
		r.notify(clientID, ev)
	}))
	if m.Resume() {
		log.Info().Msg("resumed persisted session")
	}
	return c
}

// Lookup returns the client only if it is already known.
func (r *Registry) Lookup(clientID string) (*Client, bool) {
	c, ok := r.clients[clientID]
	return c, ok
}

// Resume returns the client if it is known or if a session record for it
// survives in the store. Unlike Get it never creates an empty client.
func (r *Registry) Resume(clientID string) (*Client, bool) {
	if c, ok := r.clients[clientID]; ok {
		return c, true
	}
	if clientID == "" {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if NewStore(r.kv, clientID, r.log).Load(ctx) == nil {
		return nil, false
	}
	return r.Get(clientID), true
}

func (r *Registry) scheduleReap(c *Client, sessionID uuid.UUID) {
	r.sched.Cancel(c.reap)
	c.reap = r.sched.After(r.cfg.WarningThreshold, func() {
		c.reap = 0
		r.reapClient(c, sessionID)
	})
}

func (r *Registry) reapClient(c *Client, sessionID uuid.UUID) {
	if cur, ok := r.clients[c.ID]; !ok || cur != c {
		return
	}
	if sess := c.Manager.GetCurrentSession(); sess != nil && (sess.ID != sessionID || c.Manager.IsSessionValid()) {
		return
	}

	c.Manager.DestroySession()
	r.Forget(c.ID)
	r.log.Debug().Str("client_id", c.ID).Msg("released expired client")
}

// Observe attaches a listener to the events of every client, present and
// future.
func (r *Registry) Observe(fn func(clientID string, ev Event)) {
	r.observers = append(r.observers, fn)
}

func (r *Registry) notify(clientID string, ev Event) {
	for _, fn := range r.observers {
		fn(clientID, ev)
	}
}

// Forget stops the client's timers and drops it. The stored record is left
// alone; call DestroySession first to remove it.
func (r *Registry) Forget(clientID string) {
	c, ok := r.clients[clientID]
	if !ok {
		return
	}
	r.sched.Cancel(c.reap)
	c.reap = 0
	c.Manager.Stop()
	delete(r.clients, clientID)
}

func (r *Registry) Len() int {
	return len(r.clients)
}

// Close stops every manager.
func (r *Registry) Close() {
	for id, c := range r.clients {
		r.sched.Cancel(c.reap)
		c.Manager.Stop()
		delete(r.clients, id)
	}
}
