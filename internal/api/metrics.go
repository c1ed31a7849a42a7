package api

import (
	"net/http"
	"strconv"

	"ecofood-backend/internal/metrics"
)

// handleMetrics lists recent per-agent execution metrics, newest first.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusOK, map[string]any{"metrics": []metrics.ExecutionMetric{}})
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	recent, err := s.metrics.Recent(r.Context(), limit)
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"metrics": recent})
}
