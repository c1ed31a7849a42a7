package api

import (
	"net/http"
	"strconv"

	"ecofood-backend/internal/recipes"
)

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := recipes.SearchFilter{
		Query:   q.Get("q"),
		Diet:    q.Get("diet"),
		Cuisine: q.Get("cuisine"),
		Slot:    q.Get("slot"),
	}
	if raw := q.Get("max_prep_minutes"); raw != "" {
		filter.MaxPrepMinutes, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}

	found, err := s.catalogue.Search(r.Context(), filter)
	if err != nil {
		s.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"recipes": found, "count": len(found)})
}

type importRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// handleImportRecipe fetches a recipe page, extracts it with the LLM,
// and saves it to the catalogue. Without a configured LLM the importer
// is nil and import is unavailable.
func (s *Server) handleImportRecipe(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		respondError(w, http.StatusServiceUnavailable, "recipe import requires a configured LLM")
		return
	}
	var req importRequest
	if err := s.decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "a valid url is required")
		return
	}

	recipe, err := s.importer.ImportURL(r.Context(), req.URL)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, recipe)
}
