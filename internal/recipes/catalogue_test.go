package recipes

import (
	"context"
	"strings"
	"testing"
)

func TestCatalogueSearchByQuery(t *testing.T) {
	cat := NewCatalogue(nil)

	results, err := cat.Search(context.Background(), SearchFilter{Query: "salmon"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected at least one salmon recipe")
	}
	for _, r := range results {
		if !r.Matches(SearchFilter{Query: "salmon"}) {
			t.Errorf("Recipe %s does not match the query", r.ID)
		}
	}
}

func TestCatalogueSearchDietFilter(t *testing.T) {
	cat := NewCatalogue(nil)

	results, err := cat.Search(context.Background(), SearchFilter{Diet: "vegetarian", Limit: 20})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected vegetarian recipes in the built-in set")
	}
	for _, r := range results {
		found := false
		for _, tag := range r.DietTags {
			if strings.Contains(tag, "vegetarian") {
				found = true
			}
		}
		if !found {
			t.Errorf("Recipe %s has no vegetarian tag: %v", r.ID, r.DietTags)
		}
	}
}

func TestCatalogueSearchDefaultLimit(t *testing.T) {
	cat := NewCatalogue(nil)

	results, err := cat.Search(context.Background(), SearchFilter{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("Expected default limit of 5, got %d", len(results))
	}
	// Results are ordered by prep time so quicker meals come first.
	for i := 1; i < len(results); i++ {
		if results[i-1].PrepMinutes > results[i].PrepMinutes {
			t.Errorf("Results not ordered by prep time: %d before %d",
				results[i-1].PrepMinutes, results[i].PrepMinutes)
		}
	}
}

func TestCatalogueSearchSlotAndPrep(t *testing.T) {
	cat := NewCatalogue(nil)

	results, err := cat.Search(context.Background(), SearchFilter{Slot: "Breakfast", MaxPrepMinutes: 10, Limit: 20})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, r := range results {
		if r.PrepMinutes > 10 {
			t.Errorf("Recipe %s exceeds max prep minutes", r.ID)
		}
	}
}

func TestRecipeContainsAllergen(t *testing.T) {
	r := Recipe{
		Title: "Peanut Noodles",
		Ingredients: []Ingredient{
			{Name: "rice noodles"},
			{Name: "peanut butter"},
		},
	}
	if !r.ContainsAllergen("peanut") {
		t.Error("Expected peanut to be detected")
	}
	if !r.ContainsAllergen("PEANUT") {
		t.Error("Expected case-insensitive match")
	}
	if r.ContainsAllergen("shellfish") {
		t.Error("Did not expect shellfish to be detected")
	}
	if r.ContainsAllergen("  ") {
		t.Error("Blank allergen must never match")
	}
}
