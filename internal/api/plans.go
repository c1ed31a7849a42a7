package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"ecofood-backend/internal/household"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/tools"
)

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	plans, err := s.plans.ListPlans(r.Context(), householdID)
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// handleGetPlanForWeek looks a plan up by household and week. Any date
// within the week works; it is normalized to its Monday first.
func (s *Server) handleGetPlanForWeek(w http.ResponseWriter, r *http.Request) {
	householdID, err := pathID(r, "householdID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid household id")
		return
	}
	week, err := mealplan.NormalizeWeekStart(chi.URLParam(r, "weekStart"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := s.plans.GetPlanForWeek(r.Context(), householdID, week)
	if err != nil {
		if err == mealplan.ErrNotFound {
			respondError(w, http.StatusNotFound, "no plan for that week")
			return
		}
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	planID, err := pathID(r, "planID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	if err := s.plans.DeletePlan(r.Context(), planID); err != nil {
		if err == mealplan.ErrNotFound {
			respondError(w, http.StatusNotFound, "plan not found")
			return
		}
		s.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePatchEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r, "entryID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	var patch mealplan.EntryPatch
	if err := s.decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry patch")
		return
	}
	entry, err := s.plans.PatchEntry(r.Context(), entryID, patch)
	if err != nil {
		if err == mealplan.ErrNotFound {
			respondError(w, http.StatusNotFound, "entry not found")
			return
		}
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// handlePlanCalendar renders the plan as a downloadable ICS file.
func (s *Server) handlePlanCalendar(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.loadPlan(w, r)
	if !ok {
		return
	}

	events := make([]tools.CalendarEvent, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		events = append(events, tools.CalendarEvent{
			Title:       fmt.Sprintf("%s: %s", e.Slot, e.Title),
			Date:        entryDate(plan.WeekStart, e.Day),
			Time:        slotTime(e.Slot),
			Description: e.Summary,
		})
	}
	export := tools.ExportCalendarICS(events)

	w.Header().Set("Content-Type", "text/calendar")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=meal-plan-%s.ics", plan.WeekStart))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.ICS))
}

// handlePlanShoppingList renders the plan's consolidated shopping list
// as grouped plain text.
func (s *Server) handlePlanShoppingList(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.loadPlan(w, r)
	if !ok {
		return
	}

	inputs := make([]tools.ShoppingInput, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		names := make([]string, 0, len(e.Ingredients))
		for _, ing := range e.Ingredients {
			names = append(names, ing.Name)
		}
		inputs = append(inputs, tools.ShoppingInput{Name: e.Title, Ingredients: names})
	}
	list := tools.GenerateShoppingList(inputs)

	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for week of %s\n", plan.WeekStart)
	categories := make([]string, 0, len(list.Groups))
	for category := range list.Groups {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(strings.ReplaceAll(category, "_", " ")))
		for _, item := range list.Groups[category] {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=shopping-list-%s.txt", plan.WeekStart))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) loadPlan(w http.ResponseWriter, r *http.Request) (*mealplan.MealPlan, bool) {
	planID, err := pathID(r, "planID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid plan id")
		return nil, false
	}
	plan, err := s.plans.GetPlan(r.Context(), planID)
	if err != nil {
		if err == mealplan.ErrNotFound {
			respondError(w, http.StatusNotFound, "plan not found")
			return nil, false
		}
		s.serverError(w, err)
		return nil, false
	}
	return plan, true
}

func entryDate(weekStart, day string) string {
	for i, d := range household.Days {
		if d == day {
			if date, err := mealplan.WeekDate(weekStart, i); err == nil {
				return date
			}
		}
	}
	return weekStart
}

func slotTime(slot string) string {
	switch slot {
	case "Breakfast":
		return "08:00"
	case "Lunch":
		return "12:30"
	default:
		return "19:00"
	}
}
