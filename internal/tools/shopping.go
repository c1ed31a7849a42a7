package tools

import (
	"sort"
	"strings"
)

// ShoppingInput is one planned meal contributing ingredient lines.
type ShoppingInput struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// ShoppingList is a consolidated, category-grouped shopping list.
type ShoppingList struct {
	Groups map[string][]string `json:"groups"`
	All    []string            `json:"all"`
}

var shoppingCategories = []struct {
	name     string
	keywords []string
}{
	{"fresh_produce", []string{"lettuce", "spinach", "kale", "carrot", "onion", "garlic", "pepper", "tomato", "cucumber", "broccoli"}},
	{"protein", []string{"chicken", "beef", "pork", "salmon", "tofu", "tempeh", "egg"}},
	{"grains", []string{"rice", "quinoa", "pasta", "noodles", "bread", "tortilla", "oats"}},
	{"dairy", []string{"milk", "yogurt", "cheese", "butter", "feta"}},
	{"pantry_and_condiments", []string{"olive oil", "oil", "vinegar", "soy sauce", "spice", "cumin", "paprika", "salt", "miso"}},
	{"fruit", []string{"apple", "banana", "berry", "berries", "orange", "grape", "lemon", "lime"}},
}

// GenerateShoppingList aggregates ingredient lines from plan items into a
// deduplicated list grouped by store category.
func GenerateShoppingList(items []ShoppingInput) ShoppingList {
	var raw []string
	for _, item := range items {
		for _, ing := range item.Ingredients {
			if text := strings.TrimSpace(ing); text != "" {
				raw = append(raw, text)
			}
		}
	}

	if len(raw) == 0 {
		return ShoppingList{Groups: map[string][]string{}, All: []string{}}
	}

	groups := map[string]map[string]struct{}{}
	for _, ing := range raw {
		category := classifyIngredient(ing)
		if groups[category] == nil {
			groups[category] = map[string]struct{}{}
		}
		groups[category][ing] = struct{}{}
	}

	result := ShoppingList{Groups: map[string][]string{}}
	all := map[string]struct{}{}
	for category, set := range groups {
		items := make([]string, 0, len(set))
		for ing := range set {
			items = append(items, ing)
			all[ing] = struct{}{}
		}
		sort.Strings(items)
		result.Groups[category] = items
	}
	for ing := range all {
		result.All = append(result.All, ing)
	}
	sort.Strings(result.All)
	return result
}

func classifyIngredient(ingredient string) string {
	lowered := strings.ToLower(ingredient)
	for _, category := range shoppingCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lowered, keyword) {
				return category.name
			}
		}
	}
	return "other"
}
