package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ecofood-backend/internal/household"
	"ecofood-backend/internal/jobs"
	"ecofood-backend/internal/mealplan"
)

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobs.CreateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "household_id and week_start are required")
		return
	}

	job, err := s.registry.Create(r.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			s.serverError(w, err)
		}
		return
	}
	respondJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.registry.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		if err == jobs.ErrNotFound {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// handleCancelJob requests cooperative cancellation. Cancelling a job
// that already finished is a conflict, not a failure.
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	err := s.registry.Cancel(r.Context(), chi.URLParam(r, "jobID"))
	switch err {
	case nil:
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
	case jobs.ErrNotFound:
		respondError(w, http.StatusNotFound, "job not found")
	case jobs.ErrAlreadyFinished:
		respondError(w, http.StatusConflict, "job already finished")
	default:
		s.serverError(w, err)
	}
}

// handleJobEvents streams the job's events as server-sent events. The
// full history is replayed first; a reconnecting client may pass the
// Last-Event-ID header (or a last_event_id query parameter) to resume
// after the last event it saw. Disconnecting never cancels the job.
func (s *Server) handleJobEvents(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	afterID := int64(0)
	if raw := r.Header.Get("Last-Event-ID"); raw != "" {
		afterID, _ = strconv.ParseInt(raw, 10, 64)
	} else if raw := r.URL.Query().Get("last_event_id"); raw != "" {
		afterID, _ = strconv.ParseInt(raw, 10, 64)
	}

	ch, unsubscribe, err := s.registry.Subscribe(r.Context(), jobID, afterID)
	if err != nil {
		if err == jobs.ErrNotFound {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		s.serverError(w, err)
		return
	}
	defer unsubscribe()

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %d\ndata: %s\n\n", ev.ID, data)
			flusher.Flush()
		}
	}
}

// isValidationError tells bad input apart from genuine failures: an
// unknown household, a malformed week start or missing fields never
// create a job record and should come back as a 400.
func isValidationError(err error) bool {
	return errors.Is(err, household.ErrNotFound) ||
		errors.Is(err, jobs.ErrInvalidRequest) ||
		errors.Is(err, mealplan.ErrInvalidWeekStart)
}
