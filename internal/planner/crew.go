package planner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ecofood-backend/internal/household"
	"ecofood-backend/internal/llm"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/recipes"
	"ecofood-backend/internal/tools"
)

// Crew is the default Capabilities implementation. The architect is
// model-backed when a text generator is configured; every other
// capability is deterministic.
type Crew struct {
	catalogue *recipes.Catalogue
	textGen   llm.TextGenerator
	logger    *zap.Logger
}

// NewCrew creates a Crew. textGen may be nil, in which case drafting
// always uses the catalogue fallback.
func NewCrew(catalogue *recipes.Catalogue, textGen llm.TextGenerator, logger *zap.Logger) *Crew {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crew{catalogue: catalogue, textGen: textGen, logger: logger}
}

// ProfileHousehold normalizes the member snapshot into a compact profile.
func (c *Crew) ProfileHousehold(_ context.Context, members []household.Member) (tools.HouseholdProfile, error) {
	profileMembers := make([]tools.ProfileMember, 0, len(members))
	for _, m := range members {
		profileMembers = append(profileMembers, tools.ProfileMember{
			Name:      m.Name,
			Role:      m.Role,
			Allergens: m.Allergens,
			Likes:     m.Likes,
		})
	}
	return tools.ProfileHousehold(profileMembers), nil
}

// ReviewNutrition runs the heuristic nutrition analysis over the whole
// drafted week.
func (c *Crew) ReviewNutrition(_ context.Context, draft *Draft) (*tools.NutritionAnalysis, error) {
	var b strings.Builder
	for _, meal := range draft.Meals {
		b.WriteString(meal.Title)
		b.WriteString(" ")
		b.WriteString(meal.Summary)
		for _, ing := range meal.Ingredients {
			b.WriteString(" ")
			b.WriteString(ing.Name)
		}
		b.WriteString("\n")
	}
	analysis := tools.AnalyzeNutrition(b.String())
	return &analysis, nil
}

// ReviewPantry suggests uses for expiring pantry items and annotates
// draft meals that consume them. With use_leftovers set, at least one
// meal always gets a hint so expiring items are never silently ignored.
func (c *Crew) ReviewPantry(_ context.Context, req Request, draft *Draft) (*PantryReview, error) {
	usage := tools.SuggestPantryUsage(req.Pantry)

	annotated := make([]CandidateMeal, len(draft.Meals))
	copy(annotated, draft.Meals)

	hinted := false
	for i := range annotated {
		item, ok := pantryMatch(annotated[i], req.Pantry)
		if !ok {
			continue
		}
		annotated[i].PantryHint = fmt.Sprintf("Uses %s before it expires (%d day(s) left).",
			item.Name, item.DaysUntilExpiry)
		hinted = true
	}

	if req.UseLeftovers && !hinted && len(req.Pantry) > 0 && len(annotated) > 0 {
		item := soonestExpiring(req.Pantry)
		annotated[0].PantryHint = fmt.Sprintf("Work %s into this meal; it expires in %d day(s).",
			item.Name, item.DaysUntilExpiry)
	}

	return &PantryReview{Suggestions: usage, AnnotatedPlan: annotated}, nil
}

// Synthesize turns the reviewed draft into persisted-shape entries plus
// the shopping list and calendar export.
func (c *Crew) Synthesize(_ context.Context, req Request, draft *Draft, reviews Reviews) (*Synthesis, error) {
	meals := draft.Meals
	if reviews.Pantry != nil {
		meals = reviews.Pantry.AnnotatedPlan
	}

	week, err := mealplan.NormalizeWeekStart(req.WeekStart)
	if err != nil {
		return nil, err
	}

	// Upsert by (day, slot): a later meal for the same cell replaces the
	// earlier one, never duplicates it.
	byCell := map[planCell]CandidateMeal{}
	var order []planCell
	for _, meal := range meals {
		cell := planCell{Day: meal.Day, Slot: meal.Slot}
		if _, seen := byCell[cell]; !seen {
			order = append(order, cell)
		}
		byCell[cell] = meal
	}

	entries := make([]mealplan.Entry, 0, len(order))
	shoppingInputs := make([]tools.ShoppingInput, 0, len(order))
	events := make([]tools.CalendarEvent, 0, len(order))
	for _, cell := range order {
		meal := byCell[cell]

		summary := meal.Summary
		if meal.PantryHint != "" {
			summary = strings.TrimSpace(summary + " " + meal.PantryHint)
		}
		entries = append(entries, mealplan.Entry{
			Day:         meal.Day,
			Slot:        meal.Slot,
			Title:       meal.Title,
			Summary:     summary,
			Ingredients: meal.Ingredients,
			Steps:       meal.Steps,
			PrepMinutes: meal.PrepMinutes,
			CookMinutes: meal.CookMinutes,
			Calories:    meal.Calories,
			AttendeeIDs: attendeesFor(req.Members, meal.Day, meal.Slot),
		})

		names := make([]string, 0, len(meal.Ingredients))
		for _, ing := range meal.Ingredients {
			names = append(names, ing.Name)
		}
		shoppingInputs = append(shoppingInputs, tools.ShoppingInput{Name: meal.Title, Ingredients: names})

		events = append(events, tools.CalendarEvent{
			Title:       fmt.Sprintf("%s: %s", meal.Slot, meal.Title),
			Date:        dateForDay(week, meal.Day),
			Time:        slotTimes[meal.Slot],
			Description: summary,
		})
	}

	return &Synthesis{
		Entries:      entries,
		ShoppingList: tools.GenerateShoppingList(shoppingInputs),
		Calendar:     tools.ExportCalendarICS(events),
	}, nil
}

var slotTimes = map[string]string{
	"Breakfast": "08:00",
	"Lunch":     "12:30",
	"Dinner":    "19:00",
}

// requiredCells derives which (day, slot) cells need a meal from the
// members' attendance grids. A slot is planned when any member attends.
// A household with no members still gets a dinner every day.
func requiredCells(req Request) []planCell {
	var cells []planCell
	for _, day := range household.Days {
		for _, slot := range household.Slots {
			for _, m := range req.Members {
				if m.Schedule.AttendsOn(day, slot) {
					cells = append(cells, planCell{Day: day, Slot: slot})
					break
				}
			}
		}
	}
	if len(cells) == 0 {
		for _, day := range household.Days {
			cells = append(cells, planCell{Day: day, Slot: "Dinner"})
		}
	}
	return cells
}

func attendeesFor(members []household.Member, day, slot string) []int64 {
	var ids []int64
	for _, m := range members {
		if m.Schedule.AttendsOn(day, slot) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func dateForDay(weekStart, day string) string {
	for i, d := range household.Days {
		if d == day {
			start, err := mealplan.WeekDate(weekStart, i)
			if err != nil {
				return weekStart
			}
			return start
		}
	}
	return weekStart
}

func pantryMatch(meal CandidateMeal, pantry []tools.PantryItem) (tools.PantryItem, bool) {
	blob := strings.ToLower(meal.Title)
	for _, ing := range meal.Ingredients {
		blob += " " + strings.ToLower(ing.Name)
	}
	for _, item := range pantry {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name != "" && strings.Contains(blob, name) {
			return item, true
		}
	}
	return tools.PantryItem{}, false
}

func soonestExpiring(pantry []tools.PantryItem) tools.PantryItem {
	best := pantry[0]
	for _, item := range pantry[1:] {
		if item.DaysUntilExpiry < best.DaysUntilExpiry {
			best = item
		}
	}
	return best
}
