package api

import (
	"net/http"

	"go.uber.org/zap"

	"ecofood-backend/internal/household"
)

type householdRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) handleCreateHousehold(w http.ResponseWriter, r *http.Request) {
	var req householdRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "a household name is required")
		return
	}
	h, err := s.households.CreateHousehold(r.Context(), req.Name)
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h)
}

func (s *Server) handleListHouseholds(w http.ResponseWriter, r *http.Request) {
	list, err := s.households.ListHouseholds(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}
	if list == nil {
		list = []household.Household{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetHousehold(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "householdID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	h, err := s.households.GetHousehold(r.Context(), id)
	if err == household.ErrNotFound {
		respondError(w, http.StatusNotFound, "household not found")
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h)
}

func (s *Server) handleRenameHousehold(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "householdID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	var req householdRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "a household name is required")
		return
	}
	if err := s.households.RenameHousehold(r.Context(), id, req.Name); err != nil {
		s.notFoundOrServerError(w, err)
		return
	}
	h, err := s.households.GetHousehold(r.Context(), id)
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h)
}

func (s *Server) handleDeleteHousehold(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "householdID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	if err := s.households.DeleteHousehold(r.Context(), id); err != nil {
		s.notFoundOrServerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type memberRequest struct {
	Name      string                 `json:"name" validate:"required"`
	Role      string                 `json:"role"`
	Allergens []string               `json:"allergens"`
	Likes     []string               `json:"likes"`
	Meals     []string               `json:"meals"`
	Schedule  household.MealSchedule `json:"meal_schedule"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	var req memberRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "a member name is required")
		return
	}
	if _, err := s.households.GetHousehold(r.Context(), householdID); err != nil {
		s.notFoundOrServerError(w, err)
		return
	}

	m, err := s.households.AddMember(r.Context(), household.Member{
		HouseholdID: householdID,
		Name:        req.Name,
		Role:        req.Role,
		Allergens:   req.Allergens,
		Likes:       req.Likes,
		Meals:       req.Meals,
		Schedule:    req.Schedule,
	})
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	current, err := s.households.GetMember(r.Context(), memberID)
	if err != nil {
		s.notFoundOrServerError(w, err)
		return
	}

	var req struct {
		Name      *string   `json:"name"`
		Role      *string   `json:"role"`
		Allergens *[]string `json:"allergens"`
		Likes     *[]string `json:"likes"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid member payload")
		return
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Role != nil {
		current.Role = *req.Role
	}
	if req.Allergens != nil {
		current.Allergens = *req.Allergens
	}
	if req.Likes != nil {
		current.Likes = *req.Likes
	}

	if err := s.households.UpdateMember(r.Context(), *current); err != nil {
		s.notFoundOrServerError(w, err)
		return
	}
	updated, err := s.households.GetMember(r.Context(), memberID)
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

type scheduleRequest struct {
	Schedule household.MealSchedule `json:"meal_schedule"`
	Meals    []string               `json:"meals"`
}

// handleUpdateMemberSchedule accepts either the full attendance grid or
// the simple flat meals list; the grid is canonical, so a flat list is
// expanded to a full week before storage.
func (s *Server) handleUpdateMemberSchedule(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	var req scheduleRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid schedule payload")
		return
	}

	schedule := req.Schedule
	if schedule == nil {
		schedule = household.ScheduleFromMeals(req.Meals)
	}
	m, err := s.households.UpdateMemberSchedule(r.Context(), memberID, schedule)
	if err != nil {
		s.notFoundOrServerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	if err := s.households.DeleteMember(r.Context(), memberID); err != nil {
		s.notFoundOrServerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toolRequest struct {
	Label    string `json:"label" validate:"required"`
	Category string `json:"category"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

func (s *Server) handleAddTool(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	var req toolRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "a tool label is required")
		return
	}
	if _, err := s.households.GetHousehold(r.Context(), householdID); err != nil {
		s.notFoundOrServerError(w, err)
		return
	}

	tool, err := s.households.AddTool(r.Context(), household.KitchenTool{
		HouseholdID: householdID,
		Label:       req.Label,
		Category:    req.Category,
		Quantity:    req.Quantity,
	})
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tool)
}

func (s *Server) handleUpdateTool(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r, "toolID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tool id")
		return
	}
	var req toolRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "a tool label is required")
		return
	}
	tool := household.KitchenTool{ID: toolID, Label: req.Label, Category: req.Category, Quantity: req.Quantity}
	if err := s.households.UpdateTool(r.Context(), tool); err != nil {
		s.notFoundOrServerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tool)
}

func (s *Server) handleDeleteTool(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r, "toolID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tool id")
		return
	}
	if err := s.households.DeleteTool(r.Context(), toolID); err != nil {
		s.notFoundOrServerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) notFoundOrServerError(w http.ResponseWriter, err error) {
	if err == household.ErrNotFound {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	s.serverError(w, err)
}
