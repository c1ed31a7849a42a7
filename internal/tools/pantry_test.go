package tools

import (
	"strings"
	"testing"
)

func TestSuggestPantryUsageOrdersByExpiry(t *testing.T) {
	usage := SuggestPantryUsage([]PantryItem{
		{Name: "carrots", DaysUntilExpiry: 5},
		{Name: "spinach", DaysUntilExpiry: 1},
		{Name: "yogurt", DaysUntilExpiry: 3},
	})

	if len(usage.Suggestions) != 3 {
		t.Fatalf("Expected 3 suggestions, got %d", len(usage.Suggestions))
	}
	first := usage.Suggestions[0]
	if !strings.Contains(first.Title, "spinach") {
		t.Errorf("Expected soonest-expiring item in first title, got %q", first.Title)
	}
	if first.Style != "one-pan" {
		t.Errorf("Expected one-pan style first, got %q", first.Style)
	}
	if first.Uses[0] != "spinach" {
		t.Errorf("Expected spinach used first, got %v", first.Uses)
	}
}

func TestSuggestPantryUsageSingleItem(t *testing.T) {
	usage := SuggestPantryUsage([]PantryItem{{Name: "tofu", DaysUntilExpiry: 2}})

	// With one item there is no stew suggestion, only one-pan and bowl.
	if len(usage.Suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(usage.Suggestions))
	}
	for _, s := range usage.Suggestions {
		if s.Style == "stew" {
			t.Error("Did not expect a stew suggestion for a single item")
		}
	}
}

func TestSuggestPantryUsageEmpty(t *testing.T) {
	usage := SuggestPantryUsage([]PantryItem{{Name: "   "}})
	if len(usage.Suggestions) != 0 {
		t.Errorf("Expected no suggestions, got %v", usage.Suggestions)
	}
	if usage.Note != "No valid items provided." {
		t.Errorf("Unexpected note %q", usage.Note)
	}
}
