package api

import (
	"net/http"
	"strconv"

	_ "kaizen-online/internal/models"
)

// @Summary      Session event journal
// @Description  Lists the caller's session events after a given event id, oldest first, at most 100 per page.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     int  false  "The ID of the last event received. Omit or use 0 to get all events."
// @Success      200    {array}   models.SessionEvent
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())

	sinceStr := r.URL.Query().Get("since")
	if sinceStr == "" {
		sinceStr = "0"
	}

	sinceID, err := strconv.ParseInt(sinceStr, 10, 64)
	if err != nil || sinceID < 0 {
		writeError(w, http.StatusBadRequest, "Invalid 'since' parameter, must be a non-negative number", false)
		return
	}

	events, err := s.store.GetEventsSince(r.Context(), claims.EmployeeID, sinceID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read session events")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve events", false)
		return
	}

	writeJSON(w, http.StatusOK, events)
}
