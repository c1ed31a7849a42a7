package tools

import (
	"testing"
)

func TestGenerateShoppingList(t *testing.T) {
	list := GenerateShoppingList([]ShoppingInput{
		{Name: "Salmon bowl", Ingredients: []string{"salmon fillet", "brown rice", "spinach"}},
		{Name: "Veggie pasta", Ingredients: []string{"pasta", "spinach", "olive oil"}},
	})

	if len(list.All) != 5 {
		t.Errorf("Expected 5 deduplicated ingredients, got %v", list.All)
	}
	if got := list.Groups["protein"]; len(got) != 1 || got[0] != "salmon fillet" {
		t.Errorf("Unexpected protein group: %v", got)
	}
	if got := list.Groups["grains"]; len(got) != 2 {
		t.Errorf("Expected brown rice and pasta under grains, got %v", got)
	}
	if got := list.Groups["fresh_produce"]; len(got) != 1 || got[0] != "spinach" {
		t.Errorf("Expected spinach deduplicated under fresh_produce, got %v", got)
	}
	if got := list.Groups["pantry_and_condiments"]; len(got) != 1 {
		t.Errorf("Expected olive oil under pantry_and_condiments, got %v", got)
	}
}

func TestGenerateShoppingListUnknownAndEmpty(t *testing.T) {
	list := GenerateShoppingList([]ShoppingInput{
		{Name: "Mystery", Ingredients: []string{"dragonfruit syrup", "  "}},
	})
	if got := list.Groups["other"]; len(got) != 1 || got[0] != "dragonfruit syrup" {
		t.Errorf("Expected unknown ingredient under other, got %v", got)
	}

	empty := GenerateShoppingList(nil)
	if len(empty.All) != 0 || len(empty.Groups) != 0 {
		t.Errorf("Expected empty list, got %+v", empty)
	}
}
