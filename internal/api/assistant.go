package api

import (
	"net/http"

	"github.com/google/uuid"
)

type assistantRequest struct {
	HouseholdID int64  `json:"household_id" validate:"required"`
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
}

// handleAssistantMessage advances one turn of the member-setup dialog.
// The first call may omit session_id; the server mints one and the
// client echoes it back on every following turn.
func (s *Server) handleAssistantMessage(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "household_id is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp, err := s.assistant.HandleMessage(r.Context(), req.HouseholdID, req.SessionID, req.Message)
	if err != nil {
		s.notFoundOrServerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
