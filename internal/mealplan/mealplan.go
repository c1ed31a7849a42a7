// Package mealplan holds weekly meal plans: one plan per household and
// week, a (day, slot) entry grid, and the agent timeline recorded while
// the plan was generated.
package mealplan

import (
	"encoding/json"
	"fmt"
	"time"

	"ecofood-backend/internal/recipes"
)

// MealPlan is one household's plan for a single week.
type MealPlan struct {
	ID           int64           `json:"id"`
	HouseholdID  int64           `json:"household_id"`
	WeekStart    string          `json:"week_start"`
	SessionID    string          `json:"session_id"`
	EcoFriendly  bool            `json:"eco_friendly"`
	UseLeftovers bool            `json:"use_leftovers"`
	Notes        string          `json:"notes,omitempty"`
	Timeline     []TimelineEvent `json:"timeline,omitempty"`
	Entries      []Entry         `json:"entries"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Entry is one meal in a plan's (day, slot) grid.
type Entry struct {
	ID          int64                `json:"id"`
	PlanID      int64                `json:"plan_id"`
	Day         string               `json:"day"`
	Slot        string               `json:"slot"`
	Title       string               `json:"title"`
	Summary     string               `json:"summary,omitempty"`
	Ingredients []recipes.Ingredient `json:"ingredients,omitempty"`
	Steps       []string             `json:"steps,omitempty"`
	PrepMinutes int                  `json:"prep_minutes,omitempty"`
	CookMinutes int                  `json:"cook_minutes,omitempty"`
	Calories    int                  `json:"calories_per_person,omitempty"`
	AttendeeIDs []int64              `json:"attendee_ids"`
	GuestCount  int                  `json:"guest_count"`
}

// TimelineEvent is one immutable record of what an agent did while
// generating the plan. The payload shape depends on the stage tag.
type TimelineEvent struct {
	Agent   string          `json:"agent"`
	Stage   string          `json:"stage"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EntryPatch carries the fields a client may edit on an existing entry
// without re-running the pipeline. Nil fields are left untouched.
type EntryPatch struct {
	Title       *string  `json:"title,omitempty"`
	Summary     *string  `json:"summary,omitempty"`
	AttendeeIDs *[]int64 `json:"attendee_ids,omitempty"`
	GuestCount  *int     `json:"guest_count,omitempty" validate:"omitempty,gte=0"`
}

// ErrInvalidWeekStart marks unparseable week-start dates; callers match
// it with errors.Is to answer with a client error.
var ErrInvalidWeekStart = fmt.Errorf("invalid week start")

// NormalizeWeekStart parses an ISO date and rolls it back to the Monday
// of its week. Plans are always keyed by that Monday.
func NormalizeWeekStart(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidWeekStart, date, err)
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return t.AddDate(0, 0, -offset).Format("2006-01-02"), nil
}

// WeekDate returns the ISO date offset days after the given week start.
func WeekDate(weekStart string, offset int) (string, error) {
	t, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidWeekStart, weekStart, err)
	}
	return t.AddDate(0, 0, offset).Format("2006-01-02"), nil
}
