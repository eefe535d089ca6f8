package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"kaizen-online/internal/auth"
	"kaizen-online/internal/database"
	"kaizen-online/internal/models"
)

type LoginRequest struct {
	EmployeeID string `json:"employee_id" example:"E001"`
	Password   string `json:"password" example:"password123"`
	RememberMe bool   `json:"remember_me" example:"false"`
}

type LoginResponse struct {
	AccessToken string             `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ClientID    string             `json:"client_id" example:"V1StGXR8_Z5jdHi6B-myT"`
	Session     models.SessionInfo `json:"session"`
}

// @Summary      Logs an employee in
// @Description  Verifies the employee's credentials, starts a new session for a fresh client id and returns an access token bound to that session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login Credentials"
// @Success      200           {object}  LoginResponse
// @Failure      400           {object}  errorResponse
// @Failure      401           {object}  errorResponse
// @Failure      500           {object}  errorResponse
// @Failure      503           {object}  errorResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", false)
		return
	}
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	if req.EmployeeID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "employee_id and password are required", false)
		return
	}

	employee, err := s.store.GetEmployeeByCode(r.Context(), req.EmployeeID)
	if err != nil && !errors.Is(err, database.ErrEmployeeNotFound) {
		s.log.Error().Err(err).Str("employee_code", req.EmployeeID).Msg("employee lookup failed")
		writeError(w, http.StatusInternalServerError, "Internal server error", false)
		return
	}
	if employee == nil || !auth.CheckPasswordHash(req.Password, employee.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid employee id or password", false)
		return
	}

	var (
		clientID string
		sess     *models.Session
		info     models.SessionInfo
		stored   bool
	)
	err = s.onLoop(r, func() {
		clientID = s.sessions.NewClientID()
		c := s.sessions.Get(clientID)
		sess = c.Manager.CreateSession(employee.EmployeeCode, req.RememberMe)
		if stored = c.Manager.GetCurrentSession() != nil; !stored {
			s.sessions.Forget(clientID)
			return
		}
		c.Tracker.Reset()
		info = c.Manager.GetSessionInfo()
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "session service unavailable", false)
		return
	}
	if !stored {
		writeError(w, http.StatusServiceUnavailable, "session storage unavailable", false)
		return
	}

	token, err := auth.GenerateJWT(sess, clientID, s.config.JWT.Secret, s.loop.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to sign access token")
		writeError(w, http.StatusInternalServerError, "Failed to generate access token", false)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		ClientID:    clientID,
		Session:     info,
	})
}

// @Summary      Logs out
// @Description  Destroys the session the token was issued for. An expired token is accepted, and calling it again is harmless.
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	tokenString, problem := bearerToken(r)
	if problem != "" {
		writeError(w, http.StatusUnauthorized, problem, false)
		return
	}

	claims, err := auth.VerifyJWTAllowExpired(tokenString, s.config.JWT.Secret)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token", false)
		return
	}

	err = s.onLoop(r, func() {
		c, ok := s.sessions.Resume(claims.ClientID)
		if !ok {
			return
		}
		// A newer login on the same client is not ours to end.
		if sess := c.Manager.GetCurrentSession(); sess == nil || sess.ID.String() == claims.SessionID {
			c.Manager.DestroySession()
		}
		s.sessions.Forget(claims.ClientID)
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "session service unavailable", false)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
