package api

import (
	"errors"
	"net/http"

	"ecofood-backend/internal/household"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/planner"
)

type generateResponse struct {
	Source       string                   `json:"source"`
	Entries      []mealplan.Entry         `json:"entries"`
	ShoppingList any                      `json:"shopping_list"`
	Calendar     any                      `json:"calendar"`
	Reviews      map[string]any           `json:"reviews"`
	Timeline     []planner.CollectedEvent `json:"timeline"`
}

// handleGenerateSync runs the whole pipeline inline and returns the
// result in one response. Nothing is persisted: the caller gets the
// plan, the shopping list, the calendar export, and the event timeline
// to do with as it pleases. Long-running requests should use the job
// API instead.
func (s *Server) handleGenerateSync(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "week_start is required")
		return
	}
	if week, err := mealplan.NormalizeWeekStart(req.WeekStart); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	} else {
		req.WeekStart = week
	}

	// A stored household may be referenced instead of spelling the
	// members out inline.
	if len(req.Members) == 0 && req.HouseholdID > 0 {
		h, err := s.households.GetHousehold(r.Context(), req.HouseholdID)
		if err != nil {
			if errors.Is(err, household.ErrNotFound) {
				respondError(w, http.StatusNotFound, "household not found")
				return
			}
			s.serverError(w, err)
			return
		}
		req.Members = h.Members
		req.Tools = h.Tools
	}
	if len(req.Members) == 0 && len(req.Tools) == 0 {
		req.Tools = household.DefaultKitchenTools()
	}

	sink := &planner.CollectorSink{}
	result, err := s.workflow.Generate(r.Context(), req, sink)
	if err != nil {
		if r.Context().Err() != nil {
			return // client went away
		}
		s.serverError(w, err)
		return
	}

	resp := generateResponse{
		Source:       result.Source,
		Entries:      result.Entries,
		ShoppingList: result.ShoppingList,
		Calendar: map[string]any{
			"ics":         result.Calendar.ICS,
			"event_count": result.Calendar.EventCount,
		},
		Reviews:  map[string]any{},
		Timeline: sink.Events,
	}
	if result.Reviews.Nutrition != nil {
		resp.Reviews["nutrition"] = result.Reviews.Nutrition
	}
	if result.Reviews.Pantry != nil {
		resp.Reviews["pantry"] = result.Reviews.Pantry
	}
	respondJSON(w, http.StatusOK, resp)
}
