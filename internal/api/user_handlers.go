package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kaizen-online/internal/database"
	_ "kaizen-online/internal/models"
)

// @Summary      Get current employee
// @Description  Returns the profile of the employee the access token belongs to.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.Employee
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	employee, err := s.store.GetEmployeeByCode(r.Context(), claims.EmployeeID)
	if err != nil {
		if errors.Is(err, database.ErrEmployeeNotFound) {
			writeError(w, http.StatusNotFound, "Employee not found", false)
			return
		}
		s.log.Error().Err(err).Msg("failed to load employee")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve employee", false)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
		return
	}
	if err := s.loop.Do(ctx, func() {}); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "event_loop": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
