package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is the frame format in both directions.
type Message struct {
	Type   string          `json:"type"`
	Signal string          `json:"signal,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Hub fans messages out to the sockets of each client id. A browser
// runtime may hold more than one socket, e.g. after a reconnect.
type Hub struct {
	clients    map[string]map[*Client]bool
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

// Attach registers client unless the hub has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ClientID]; !ok {
		h.clients[client.ClientID] = make(map[*Client]bool)
	}
	h.clients[client.ClientID][client] = true
	h.log.Debug().Str("client_id", client.ClientID).Msg("socket registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sockets, ok := h.clients[client.ClientID]; ok {
		if _, ok := sockets[client]; ok {
			delete(sockets, client)
			close(client.send)
			if len(sockets) == 0 {
				delete(h.clients, client.ClientID)
			}
			h.log.Debug().Str("client_id", client.ClientID).Msg("socket unregistered")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sockets := range h.clients {
		for client := range sockets {
			close(client.send)
		}
		delete(h.clients, id)
	}
}

// Publish queues data for every socket of clientID. A socket whose buffer
// is full misses the message.
func (h *Hub) Publish(clientID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if sockets, ok := h.clients[clientID]; ok {
		for client := range sockets {
			select {
			case client.send <- data:
			default:
				h.log.Warn().Str("client_id", clientID).Msg("socket send buffer is full, dropping message")
			}
		}
	}
}

// PublishJSON encodes v as one frame.
func (h *Hub) PublishJSON(clientID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Publish(clientID, data)
	return nil
}

// ClientIDs lists the ids that have at least one open socket.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}
