package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"ecofood-backend/internal/household"
	"ecofood-backend/internal/llm"
	"ecofood-backend/internal/recipes"
	"ecofood-backend/internal/tools"
)

func testRequest() Request {
	return Request{
		HouseholdID: 1,
		WeekStart:   "2026-01-05",
		Members: []household.Member{
			{ID: 1, Name: "Ana", Role: household.RoleAdult,
				Allergens: []string{"peanuts"},
				Likes:     []string{"salmon"},
				Schedule:  household.FullSchedule()},
		},
	}
}

func stageOrder(events []CollectedEvent) []string {
	var stages []string
	for _, ev := range events {
		stages = append(stages, ev.Stage)
	}
	return stages
}

func indexOf(stages []string, stage string) int {
	for i, s := range stages {
		if s == stage {
			return i
		}
	}
	return -1
}

func TestGenerateEventOrdering(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), nil, nil)
	w := NewWorkflow(crew, nil)
	sink := &CollectorSink{}

	result, err := w.Generate(context.Background(), testRequest(), sink)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("Expected fallback draft without a model, got %s", result.Source)
	}

	stages := stageOrder(sink.Events)
	profileIdx := indexOf(stages, StageProfileReady)
	candidateIdx := indexOf(stages, StagePlanCandidate)
	nutritionIdx := indexOf(stages, StageReviewNutrition)
	pantryIdx := indexOf(stages, StageReviewPantry)
	finalIdx := indexOf(stages, StagePlanFinal)

	for name, idx := range map[string]int{
		"profile": profileIdx, "candidate": candidateIdx,
		"nutrition": nutritionIdx, "pantry": pantryIdx, "final": finalIdx,
	} {
		if idx < 0 {
			t.Fatalf("Missing %s event in %v", name, stages)
		}
	}
	// Profiling strictly precedes architecting, which precedes both
	// reviewers, which precede synthesis. The two reviewers themselves
	// may land in either order.
	if !(profileIdx < candidateIdx && candidateIdx < nutritionIdx &&
		candidateIdx < pantryIdx && nutritionIdx < finalIdx && pantryIdx < finalIdx) {
		t.Errorf("Stage order violated: %v", stages)
	}
}

func TestGenerateCoversRequiredCells(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), nil, nil)
	w := NewWorkflow(crew, nil)

	req := testRequest()
	req.Members[0].Schedule = household.ScheduleFromMeals([]string{"Dinner"})

	result, err := w.Generate(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(result.Entries) != 7 {
		t.Fatalf("Expected 7 dinner entries, got %d", len(result.Entries))
	}
	seen := map[string]bool{}
	for _, e := range result.Entries {
		if e.Slot != "Dinner" {
			t.Errorf("Unexpected slot %s", e.Slot)
		}
		key := e.Day + "/" + e.Slot
		if seen[key] {
			t.Errorf("Duplicate entry for %s", key)
		}
		seen[key] = true
		if len(e.AttendeeIDs) != 1 || e.AttendeeIDs[0] != 1 {
			t.Errorf("Expected attending member on %s, got %v", e.Day, e.AttendeeIDs)
		}
	}
	if result.Calendar.EventCount != 7 {
		t.Errorf("Expected 7 calendar events, got %d", result.Calendar.EventCount)
	}
	if len(result.ShoppingList.All) == 0 {
		t.Error("Expected a non-empty shopping list")
	}
}

func TestGeneratePantryAndAllergens(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), nil, nil)
	w := NewWorkflow(crew, nil)

	req := testRequest()
	req.UseLeftovers = true
	req.Pantry = []tools.PantryItem{{Name: "spinach", DaysUntilExpiry: 2}}

	sink := &CollectorSink{}
	result, err := w.Generate(context.Background(), req, sink)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// No meal anywhere may contain the household allergen.
	for _, e := range result.Entries {
		for _, ing := range e.Ingredients {
			if strings.Contains(strings.ToLower(ing.Name), "peanut") {
				t.Errorf("Allergen in %s %s: %s", e.Day, e.Slot, ing.Name)
			}
		}
	}

	// The pantry review must hint at the expiring spinach.
	if result.Reviews.Pantry == nil {
		t.Fatal("Expected a pantry review")
	}
	hinted := false
	for _, meal := range result.Reviews.Pantry.AnnotatedPlan {
		if strings.Contains(strings.ToLower(meal.PantryHint), "spinach") {
			hinted = true
		}
	}
	if !hinted {
		t.Error("Expected at least one pantry hint referencing spinach")
	}
}

type failingNutrition struct {
	*Crew
}

func (f *failingNutrition) ReviewNutrition(context.Context, *Draft) (*tools.NutritionAnalysis, error) {
	return nil, fmt.Errorf("nutrition capability unavailable")
}

func TestGenerateReviewerFailureDegrades(t *testing.T) {
	caps := &failingNutrition{Crew: NewCrew(recipes.NewCatalogue(nil), nil, nil)}
	w := NewWorkflow(caps, nil)
	sink := &CollectorSink{}

	result, err := w.Generate(context.Background(), testRequest(), sink)
	if err != nil {
		t.Fatalf("Expected run to complete despite reviewer failure, got %v", err)
	}
	if result.Reviews.Nutrition != nil {
		t.Error("Expected no nutrition review")
	}
	if result.Reviews.Pantry == nil {
		t.Error("Expected the pantry review to survive")
	}

	// The final payload's reviews map has a pantry key and no nutrition key.
	finalIdx := indexOf(stageOrder(sink.Events), StagePlanFinal)
	if finalIdx < 0 {
		t.Fatal("Missing final event")
	}
	payload := sink.Events[finalIdx].Payload.(map[string]any)
	reviews := payload["reviews"].(map[string]any)
	if _, ok := reviews["nutrition"]; ok {
		t.Error("Did not expect a nutrition key in final reviews")
	}
	if _, ok := reviews["pantry"]; !ok {
		t.Error("Expected a pantry key in final reviews")
	}
	if indexOf(stageOrder(sink.Events), StageReviewNutrition) >= 0 {
		t.Error("Did not expect a nutrition review event")
	}
}

type failingArchitect struct {
	*Crew
}

func (f *failingArchitect) DraftPlan(context.Context, Request, tools.HouseholdProfile) (*Draft, error) {
	return nil, fmt.Errorf("architect capability unavailable")
}

func TestGenerateArchitectFailureAborts(t *testing.T) {
	caps := &failingArchitect{Crew: NewCrew(recipes.NewCatalogue(nil), nil, nil)}
	w := NewWorkflow(caps, nil)
	sink := &CollectorSink{}

	if _, err := w.Generate(context.Background(), testRequest(), sink); err == nil {
		t.Fatal("Expected error from failed architect")
	}
	if indexOf(stageOrder(sink.Events), StagePlanFinal) >= 0 {
		t.Error("No final event may be emitted after a critical failure")
	}
}

type cannedGenerator struct {
	content string
	fail    bool
}

func (c *cannedGenerator) GenerateContent(context.Context, string) (llm.ContentResponse, error) {
	if c.fail {
		return llm.ContentResponse{}, fmt.Errorf("model down")
	}
	return llm.ContentResponse{Content: c.content}, nil
}

func TestModelDraftSanitization(t *testing.T) {
	// The model schedules one valid meal, one meal carrying the allergen,
	// and one for an unknown day. Only the valid meal survives; every
	// other required cell is filled from the catalogue.
	raw, _ := json.Marshal(map[string]any{"meals": []map[string]any{
		{"day": "Monday", "slot": "Dinner", "title": "Roast chicken", "ingredients": []map[string]any{{"name": "chicken"}}},
		{"day": "Tuesday", "slot": "Dinner", "title": "Satay", "ingredients": []map[string]any{{"name": "peanut sauce"}}},
		{"day": "Funday", "slot": "Dinner", "title": "Nonsense"},
	}})
	crew := NewCrew(recipes.NewCatalogue(nil), &cannedGenerator{content: string(raw)}, nil)

	req := testRequest()
	req.Members[0].Schedule = household.ScheduleFromMeals([]string{"Dinner"})

	profile, _ := crew.ProfileHousehold(context.Background(), req.Members)
	draft, err := crew.DraftPlan(context.Background(), req, profile)
	if err != nil {
		t.Fatalf("DraftPlan failed: %v", err)
	}
	if draft.Source != SourceModel {
		t.Errorf("Expected model source, got %s", draft.Source)
	}
	if len(draft.Meals) != 7 {
		t.Fatalf("Expected 7 meals, got %d", len(draft.Meals))
	}
	for _, meal := range draft.Meals {
		if meal.Day == "Monday" && meal.Title != "Roast chicken" {
			t.Errorf("Expected the valid model meal kept, got %s", meal.Title)
		}
		if meal.Title == "Satay" {
			t.Error("Allergen-carrying model meal must be replaced")
		}
		if meal.Title == "Nonsense" {
			t.Error("Unknown-day meal must be dropped")
		}
	}
}

func TestModelFailureFallsBack(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), &cannedGenerator{fail: true}, nil)
	w := NewWorkflow(crew, nil)
	sink := &CollectorSink{}

	result, err := w.Generate(context.Background(), testRequest(), sink)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("Expected fallback source, got %s", result.Source)
	}
	if indexOf(stageOrder(sink.Events), StageFallback) < 0 {
		t.Error("Expected a fallback notice event")
	}
}

func TestGenerateCancelledBetweenStages(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), nil, nil)
	w := NewWorkflow(crew, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Generate(ctx, testRequest(), nil); err == nil {
		t.Fatal("Expected cancellation error")
	}
}
