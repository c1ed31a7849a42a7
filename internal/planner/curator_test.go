package planner

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"ecofood-backend/internal/recipes"
	"ecofood-backend/internal/tools"
)

func curationDraft() *Draft {
	return &Draft{
		Source: SourceModel,
		Meals: []CandidateMeal{
			{Day: "Monday", Slot: "Dinner", Title: "Roast chicken", Summary: "Simple roast."},
			{Day: "Tuesday", Slot: "Dinner", Title: "Lentil stew", Summary: "Hearty stew."},
			{Day: "Wednesday", Slot: "Dinner", Title: "Lentil stew", Summary: "Again."},
		},
	}
}

func TestCurateMenuEnrichesMeals(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), nil, nil)
	profile := tools.HouseholdProfile{TopLikes: []tools.LabelCount{{Name: "wild salmon", Count: 2}}}
	req := testRequest()
	req.Notes = "birthday dinner on Friday"

	curated, err := crew.CurateMenu(context.Background(), req, profile, curationDraft())
	if err != nil {
		t.Fatalf("CurateMenu failed: %v", err)
	}
	if len(curated.Meals) != 3 {
		t.Fatalf("Expected 3 curated meals, got %d", len(curated.Meals))
	}

	first := curated.Meals[0]
	if first.Title != "Garden-to-table Roast chicken" {
		t.Errorf("Expected theme-word title prefix, got %q", first.Title)
	}
	if !strings.Contains(first.Summary, "Simple roast.") {
		t.Errorf("Base summary lost: %q", first.Summary)
	}
	if !strings.Contains(first.Summary, first.Technique) ||
		!strings.Contains(first.Summary, "Pair with "+first.Pairing) {
		t.Errorf("Summary %q missing technique or pairing", first.Summary)
	}
	if !strings.Contains(first.Theme, "inspired by Wild Salmon") {
		t.Errorf("Expected favorites-inspired theme label, got %q", first.Theme)
	}

	if len(curated.Themes) != 3 {
		t.Errorf("Expected one theme snippet per meal, got %d", len(curated.Themes))
	}
	if !strings.HasPrefix(curated.Themes[0], "Monday Dinner: ") {
		t.Errorf("Unexpected theme snippet %q", curated.Themes[0])
	}
	if !strings.HasSuffix(curated.Story, "Guest notes: birthday dinner on Friday.") {
		t.Errorf("Story %q missing the household notes", curated.Story)
	}
}

func TestCurateMenuDedupesRepeatedTitles(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), nil, nil)
	// Both titles already contain their position's theme word, so
	// neither is prefixed and the second collides with the first.
	title := "Garden-to-table Fire-roasted plate"
	draft := &Draft{Meals: []CandidateMeal{
		{Day: "Monday", Slot: "Lunch", Title: title},
		{Day: "Monday", Slot: "Dinner", Title: title},
	}}

	curated, err := crew.CurateMenu(context.Background(), testRequest(), tools.HouseholdProfile{}, draft)
	if err != nil {
		t.Fatalf("CurateMenu failed: %v", err)
	}
	if curated.Meals[0].Title != title {
		t.Errorf("Unexpected first title %q", curated.Meals[0].Title)
	}
	second := curated.Meals[1].Title
	if second == curated.Meals[0].Title {
		t.Errorf("Duplicate curated title %q", second)
	}
	if !strings.HasSuffix(second, "(Dinner)") {
		t.Errorf("Expected slot-suffixed title, got %q", second)
	}
}

func TestCurateMenuDeterministic(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), nil, nil)
	profile := tools.HouseholdProfile{TopLikes: []tools.LabelCount{{Name: "tofu", Count: 1}}}

	a, err := crew.CurateMenu(context.Background(), testRequest(), profile, curationDraft())
	if err != nil {
		t.Fatalf("CurateMenu failed: %v", err)
	}
	b, err := crew.CurateMenu(context.Background(), testRequest(), profile, curationDraft())
	if err != nil {
		t.Fatalf("CurateMenu failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Curation of the same draft produced different results")
	}
}

func TestGenerateFeedsCuratedDraftToSynthesis(t *testing.T) {
	crew := NewCrew(recipes.NewCatalogue(nil), nil, nil)
	w := NewWorkflow(crew, nil)
	sink := &CollectorSink{}

	result, err := w.Generate(context.Background(), testRequest(), sink)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	stages := stageOrder(sink.Events)
	candidateIdx := indexOf(stages, StagePlanCandidate)
	plannedIdx := indexOf(stages, StagePlanned)
	nutritionIdx := indexOf(stages, StageReviewNutrition)
	if plannedIdx < 0 {
		t.Fatalf("Missing curation event in %v", stages)
	}
	if !(candidateIdx < plannedIdx && plannedIdx < nutritionIdx) {
		t.Errorf("Curation must run between architecting and review: %v", stages)
	}

	payload := sink.Events[plannedIdx].Payload.(map[string]any)
	if story, _ := payload["menu_story"].(string); story == "" {
		t.Error("Expected a menu story in the curation payload")
	}
	themes, _ := payload["themes"].([]string)
	if len(themes) == 0 {
		t.Error("Expected theme snippets in the curation payload")
	}

	// Synthesized entries carry the curated summaries.
	paired := false
	for _, e := range result.Entries {
		if strings.Contains(e.Summary, "Pair with ") {
			paired = true
		}
	}
	if !paired {
		t.Error("Expected curated pairings to reach the final entries")
	}
}
