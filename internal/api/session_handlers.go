package api

import (
	"encoding/json"
	"net/http"

	"kaizen-online/internal/activity"
	"kaizen-online/internal/auth"
	"kaizen-online/internal/models"
)

type ExtendResponse struct {
	AccessToken string             `json:"access_token"`
	Session     models.SessionInfo `json:"session"`
}

type ActivityRequest struct {
	Signal string `json:"signal" example:"pointer"`
}

type ActivityResponse struct {
	Updated bool `json:"updated"`
}

// @Summary      Current session
// @Description  Returns the caller's session with remaining time, warning flag and extensions left.
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.SessionInfo
// @Failure      401  {object}  errorResponse
// @Router       /session [get]
func (s *Server) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var info models.SessionInfo
	err := s.onLoop(r, func() {
		if c, ok := s.sessions.Lookup(claims.ClientID); ok {
			info = c.Manager.GetSessionInfo()
		}
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "session service unavailable", false)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// @Summary      Extend the session
// @Description  Pushes expiry one full session duration past now. Rejected once the extension limit is reached; the client must then log the user out.
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ExtendResponse
// @Failure      401  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /session/extend [post]
func (s *Server) ExtendSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var (
		extended bool
		sess     *models.Session
		info     models.SessionInfo
	)
	err := s.onLoop(r, func() {
		c, ok := s.sessions.Lookup(claims.ClientID)
		if !ok {
			return
		}
		if extended = c.Manager.ExtendSession(); extended {
			sess = c.Manager.GetCurrentSession()
			info = c.Manager.GetSessionInfo()
		}
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "session service unavailable", false)
		return
	}
	if !extended || sess == nil {
		writeError(w, http.StatusConflict, "session cannot be extended", true)
		return
	}

	token, err := auth.GenerateJWT(sess, claims.ClientID, s.config.JWT.Secret, s.loop.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to sign access token")
		writeError(w, http.StatusInternalServerError, "Failed to generate access token", false)
		return
	}

	writeJSON(w, http.StatusOK, ExtendResponse{AccessToken: token, Session: info})
}

// @Summary      Report user activity
// @Description  Records an interaction signal (pointer, keyboard, touch, scroll). Updates are throttled; activity never moves the expiry.
// @Tags         session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        activityRequest  body      ActivityRequest  true  "Signal"
// @Success      200              {object}  ActivityResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Router       /session/activity [post]
func (s *Server) ActivityHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", false)
		return
	}
	sig, ok := activity.ParseSignal(req.Signal)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown signal", false)
		return
	}

	var updated bool
	err := s.onLoop(r, func() {
		if c, ok := s.sessions.Lookup(claims.ClientID); ok {
			updated = c.Tracker.Track(sig)
		}
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "session service unavailable", false)
		return
	}

	writeJSON(w, http.StatusOK, ActivityResponse{Updated: updated})
}
