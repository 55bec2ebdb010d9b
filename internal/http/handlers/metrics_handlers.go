package handlers

import (
	"net/http"
)

// GetDashboardMetricsHandler godoc
// @Summary Inventory totals for the caller's items
// @Tags metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repo.Metrics
// @Failure 401 {object} ErrorResponse
// @Router /metrics/dashboard [get]
func (s *Server) GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	m, err := s.inventory.Dashboard(r.Context(), actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, m)
}
