package recipes

import (
	"strings"
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Recipe describes a single dish the planner can schedule.
type Recipe struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Summary       string       `json:"summary"`
	Cuisine       string       `json:"cuisine"`
	DietTags      []string     `json:"diet_tags"`
	Slots         []string     `json:"slots,omitempty"`
	Ingredients   []Ingredient `json:"ingredients,omitempty"`
	Steps         []string     `json:"steps,omitempty"`
	PrepMinutes   int          `json:"prep_minutes,omitempty"`
	CookMinutes   int          `json:"cook_minutes,omitempty"`
	Calories      int          `json:"calories_per_person,omitempty"`
	RequiredTools []string     `json:"required_tools,omitempty"`
	SourceURL     string       `json:"source_url,omitempty"`
	UpdatedAt     string       `json:"updated_at,omitempty"`
}

// SearchFilter narrows a catalogue search.
type SearchFilter struct {
	Query          string
	Diet           string
	Cuisine        string
	Slot           string
	MaxPrepMinutes int
	Limit          int
}

// Matches reports whether the recipe satisfies the filter, using the same
// substring semantics for query/diet/cuisine.
func (r Recipe) Matches(f SearchFilter) bool {
	blob := strings.ToLower(strings.Join([]string{
		r.Title,
		r.Summary,
		r.Cuisine,
		strings.Join(r.DietTags, " "),
	}, " "))

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		matched := true
		for _, word := range strings.Fields(q) {
			if !strings.Contains(blob, word) {
				matched = false
				break
			}
		}
		if !matched {
			return false
		}
	}
	if diet := strings.ToLower(strings.TrimSpace(f.Diet)); diet != "" {
		found := false
		for _, tag := range r.DietTags {
			if strings.Contains(strings.ToLower(tag), diet) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if cuisine := strings.ToLower(strings.TrimSpace(f.Cuisine)); cuisine != "" {
		if !strings.Contains(strings.ToLower(r.Cuisine), cuisine) {
			return false
		}
	}
	if f.Slot != "" && len(r.Slots) > 0 {
		found := false
		for _, s := range r.Slots {
			if strings.EqualFold(s, f.Slot) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MaxPrepMinutes > 0 && r.PrepMinutes > f.MaxPrepMinutes {
		return false
	}
	return true
}

// ContainsAllergen reports whether any ingredient or the title mentions
// the given allergen label.
func (r Recipe) ContainsAllergen(allergen string) bool {
	needle := strings.ToLower(strings.TrimSpace(allergen))
	if needle == "" {
		return false
	}
	if strings.Contains(strings.ToLower(r.Title), needle) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), needle) {
			return true
		}
	}
	return false
}
