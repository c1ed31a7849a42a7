package mealplan

import (
	"testing"
)

func TestNormalizeWeekStart(t *testing.T) {
	cases := map[string]string{
		"2026-01-05": "2026-01-05", // already Monday
		"2026-01-07": "2026-01-05", // Wednesday
		"2026-01-11": "2026-01-05", // Sunday rolls back, not forward
		"2026-02-01": "2026-01-26", // month boundary
	}
	for input, want := range cases {
		got, err := NormalizeWeekStart(input)
		if err != nil {
			t.Fatalf("NormalizeWeekStart(%q) failed: %v", input, err)
		}
		if got != want {
			t.Errorf("NormalizeWeekStart(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeWeekStartInvalid(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "2026/01/05"} {
		if _, err := NormalizeWeekStart(input); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}
