package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kaizen-online/internal/activity"
	"kaizen-online/internal/auth"
	"kaizen-online/internal/database"
	"kaizen-online/internal/models"
	"kaizen-online/internal/session"
	"kaizen-online/internal/websocket"
)

const (
	msgSessionTick = "session_tick"
	msgActivity    = "activity"
)

type sessionEventData struct {
	Session     models.Session `json:"session"`
	RemainingMs int64          `json:"remaining_ms"`
}

// onSessionEvent runs on the event loop for every event of every client.
func (s *Server) onSessionEvent(clientID string, ev session.Event) {
	data := sessionEventData{Session: ev.Session, RemainingMs: ev.Remaining.Milliseconds()}

	if s.journal != nil {
		s.journal.Record(database.LogSessionEventParams{
			EmployeeCode: ev.Session.SubjectID,
			ClientID:     clientID,
			SessionID:    ev.Session.ID.String(),
			EventType:    string(ev.Kind),
			Payload: map[string]any{
				"status":          ev.Session.Status,
				"expires_at":      ev.Session.ExpiresAt,
				"extension_count": ev.Session.ExtensionCount,
				"remaining_ms":    data.RemainingMs,
			},
		})
	}

	if s.wsHub != nil {
		s.publish(clientID, string(ev.Kind), data)
	}
}

func (s *Server) publish(clientID, kind string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("type", kind).Msg("failed to encode socket message")
		return
	}
	if err := s.wsHub.PublishJSON(clientID, websocket.Message{Type: kind, Data: raw}); err != nil {
		s.log.Error().Err(err).Str("type", kind).Msg("failed to publish socket message")
	}
}

// pushTicks runs on the event loop every ui refresh interval.
func (s *Server) pushTicks() {
	if s.wsHub == nil {
		return
	}
	for _, id := range s.wsHub.ClientIDs() {
		c, ok := s.sessions.Lookup(id)
		if !ok {
			continue
		}
		s.publish(id, msgSessionTick, c.Manager.GetSessionInfo())
	}
}

// @Summary      Session event stream
// @Description  Upgrades to a websocket that pushes session_created, session_warning, session_extended, session_expired, session_destroyed and a session_tick every ui refresh interval. Inbound frames {"type":"activity","signal":"pointer"} report user activity.
// @Tags         session
// @Param        token  query  string  true  "Access token"
// @Success      101
// @Failure      401  {object}  errorResponse
// @Router       /ws [get]
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	if s.wsHub == nil {
		writeError(w, http.StatusServiceUnavailable, "event stream disabled", false)
		return
	}
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "token query parameter required", false)
		return
	}

	claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
	if err != nil {
		s.log.Debug().Err(err).Msg("ws connection attempt with invalid token")
		writeError(w, http.StatusUnauthorized, "invalid or expired token", true)
		return
	}

	var live bool
	if err := s.onLoop(r, func() { _, live = s.liveClient(claims) }); err != nil {
		writeError(w, http.StatusServiceUnavailable, "session service unavailable", false)
		return
	}
	if !live {
		writeError(w, http.StatusUnauthorized, "session expired", true)
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := claims.ClientID
	client := websocket.NewClient(s.wsHub, conn, clientID, func(msg websocket.Message) {
		s.handleSocketMessage(clientID, msg)
	})
	if !s.wsHub.Attach(client) {
		conn.Close()
		return
	}

	go client.ReadPump()
	go client.WritePump()
}

// handleSocketMessage runs on the socket's read goroutine.
func (s *Server) handleSocketMessage(clientID string, msg websocket.Message) {
	if msg.Type != msgActivity {
		return
	}
	sig, ok := activity.ParseSignal(msg.Signal)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.loop.Do(ctx, func() {
		if c, ok := s.sessions.Lookup(clientID); ok {
			c.Tracker.Track(sig)
		}
	})
	if err != nil {
		s.log.Debug().Err(err).Str("client_id", clientID).Msg("dropped activity signal")
	}
}
