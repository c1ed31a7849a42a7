package household

import (
	"reflect"
	"testing"
)

func TestScheduleNormalizeFillsGrid(t *testing.T) {
	partial := MealSchedule{
		"Monday":  {"Dinner": true},
		"Someday": {"Brunch": true}, // unknown labels are dropped
	}
	full := partial.Normalize()

	if len(full) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(full))
	}
	for _, day := range Days {
		if len(full[day]) != 3 {
			t.Errorf("Expected 3 slots for %s, got %d", day, len(full[day]))
		}
	}
	if !full.AttendsOn("Monday", "Dinner") {
		t.Error("Expected Monday dinner attendance preserved")
	}
	if full.AttendsOn("Monday", "Breakfast") {
		t.Error("Expected missing cells to default to false")
	}
	if _, ok := full["Someday"]; ok {
		t.Error("Expected unknown day to be dropped")
	}
}

func TestScheduleMealsDerivation(t *testing.T) {
	s := MealSchedule{
		"Tuesday":  {"Lunch": true},
		"Saturday": {"Breakfast": true},
	}.Normalize()

	meals := s.Meals()
	if !reflect.DeepEqual(meals, []string{"Breakfast", "Lunch"}) {
		t.Errorf("Expected [Breakfast Lunch] in slot order, got %v", meals)
	}

	if got := (MealSchedule{}).Meals(); len(got) != 0 {
		t.Errorf("Expected no meals for empty schedule, got %v", got)
	}
}

func TestScheduleFromMealsRoundTrip(t *testing.T) {
	s := ScheduleFromMeals([]string{"Dinner"})
	for _, day := range Days {
		if !s.AttendsOn(day, "Dinner") {
			t.Errorf("Expected dinner attendance every day, missing %s", day)
		}
		if s.AttendsOn(day, "Lunch") {
			t.Errorf("Did not expect lunch attendance on %s", day)
		}
	}
	if !reflect.DeepEqual(s.Meals(), []string{"Dinner"}) {
		t.Errorf("Expected derived meals to round-trip, got %v", s.Meals())
	}
}

func TestFullSchedule(t *testing.T) {
	s := FullSchedule()
	if !reflect.DeepEqual(s.Meals(), Slots) {
		t.Errorf("Expected all slots attended, got %v", s.Meals())
	}
}

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"":      RoleAdult,
		"adult": RoleAdult,
		"Child": RoleChild,
		"kid":   RoleChild,
		"GUEST": RoleGuest,
	}
	for input, want := range cases {
		if got := NormalizeRole(input); got != want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", input, got, want)
		}
	}
}
