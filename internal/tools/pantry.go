package tools

import (
	"fmt"
	"sort"
	"strings"
)

// PantryItem is a soon-to-expire item supplied per planning request.
type PantryItem struct {
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	DaysUntilExpiry int     `json:"days_until_expiry"`
}

// PantrySuggestion is one meal idea built around expiring items.
type PantrySuggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Uses        []string `json:"uses"`
	Style       string   `json:"style"`
}

// PantryUsage is the pantry reviewer's output.
type PantryUsage struct {
	Suggestions []PantrySuggestion `json:"suggestions"`
	Note        string             `json:"note,omitempty"`
}

// SuggestPantryUsage suggests 2-3 meals that use the soonest-expiring
// items first. The suggestions are heuristic and template based.
func SuggestPantryUsage(items []PantryItem) PantryUsage {
	var focus []PantryItem
	for _, item := range items {
		if strings.TrimSpace(item.Name) != "" {
			item.Name = strings.TrimSpace(item.Name)
			focus = append(focus, item)
		}
	}
	sort.SliceStable(focus, func(i, j int) bool {
		if focus[i].DaysUntilExpiry != focus[j].DaysUntilExpiry {
			return focus[i].DaysUntilExpiry < focus[j].DaysUntilExpiry
		}
		return focus[i].Name < focus[j].Name
	})

	if len(focus) == 0 {
		return PantryUsage{Note: "No valid items provided."}
	}

	names := make([]string, len(focus))
	for i, item := range focus {
		names[i] = item.Name
	}
	primary := names[:min(3, len(names))]
	extra := names[min(3, len(names)):min(6, len(names))]

	var suggestions []PantrySuggestion

	// One-pan or sheet-pan meal.
	rest := "mixed vegetables"
	if len(primary) > 1 {
		rest = joinList(primary[1:])
	}
	suggestions = append(suggestions, PantrySuggestion{
		Title: fmt.Sprintf("Sheet-pan dinner with %s", primary[0]),
		Description: fmt.Sprintf(
			"Roast %s together with %s on a single tray. Add olive oil, herbs, and a starch (e.g. potatoes or grains) to build a complete, low-effort dinner.",
			primary[0], rest),
		Uses:  primary,
		Style: "one-pan",
	})

	// Soup, stew, or curry style.
	if len(primary) >= 2 {
		suggestions = append(suggestions, PantrySuggestion{
			Title: fmt.Sprintf("Comfort stew using %s", joinList(primary[:2])),
			Description: fmt.Sprintf(
				"Combine %s in a pot with onions, garlic, and stock. Simmer into a stew or curry. Serve over rice or with crusty bread.",
				joinList(primary[:2])),
			Uses:  append(append([]string{}, primary[:2]...), extra...),
			Style: "stew",
		})
	}

	// Bowl / salad / grain bowl.
	suggestions = append(suggestions, PantrySuggestion{
		Title: fmt.Sprintf("Next-day lunch bowls featuring %s", primary[0]),
		Description: fmt.Sprintf(
			"Turn leftover %s into cold or warm grain bowls. Pair with greens, a grain (rice, quinoa, bulgur), and a simple dressing to get an easy, balanced lunch.",
			joinList(primary)),
		Uses:  append(append([]string{}, primary...), extra...),
		Style: "bowl",
	})

	return PantryUsage{Suggestions: suggestions}
}

func joinList(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values[:len(values)-1], ", ") + " and " + values[len(values)-1]
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
