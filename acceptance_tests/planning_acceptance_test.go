package acceptance_tests

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"ecofood-backend/internal/database"
	"ecofood-backend/internal/household"
	"ecofood-backend/internal/jobs"
	"ecofood-backend/internal/llm"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/planner"
	"ecofood-backend/internal/recipes"
	"ecofood-backend/internal/shared"
)

// --- Mock LLM Client ---
type mockLLMClient struct {
	generateContentCalls int
}

func (m *mockLLMClient) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.generateContentCalls++

	if strings.Contains(prompt, "recipe extraction expert") {
		return llm.ContentResponse{Content: `{
			"title": "Test Recipe",
			"summary": "A dish for testing.",
			"ingredients": [{"name": "testing", "quantity": "1", "unit": "cup"}],
			"steps": ["Write a test."],
			"prep_minutes": 10
		}`}, nil
	}

	// Architect request: one dinner for every day of the week.
	var meals []string
	for _, day := range household.Days {
		meals = append(meals, fmt.Sprintf(`{
			"day": %q, "slot": "Dinner",
			"title": "Model %s Dinner",
			"summary": "Drafted by the model.",
			"ingredients": [{"name": "lentils", "quantity": "200", "unit": "g"}],
			"steps": ["Cook the lentils."],
			"prep_minutes": 10, "cook_minutes": 25, "calories_per_person": 520
		}`, day, day))
	}
	content := fmt.Sprintf(`{"meals": [%s]}`, strings.Join(meals, ","))
	return llm.ContentResponse{
		Content: content,
		Usage:   shared.TokenUsage{PromptTokens: 300, CompletionTokens: 700, Model: "mock"},
	}, nil
}

// TestModelBackedPlanningEndToEnd drives a planning job through the real
// registry, pipeline, and persistence with only the LLM mocked, and
// checks the plan that lands in the database came from the model draft.
func TestModelBackedPlanningEndToEnd(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "acceptance.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	mockLLM := &mockLLMClient{}

	households := household.NewRepository(db.SQL)
	plans := mealplan.NewRepository(db.SQL)
	catalogue := recipes.NewCatalogue(recipes.NewRepository(db.SQL))
	crew := planner.NewCrew(catalogue, mockLLM, nil)
	registry := jobs.NewRegistry(jobs.NewRepository(db.SQL), households, plans,
		planner.NewWorkflow(crew, nil), nil, nil, nil)

	h, err := households.CreateHousehold(ctx, "Acceptance Household")
	if err != nil {
		t.Fatalf("Failed to create household: %v", err)
	}
	if _, err := households.AddMember(ctx, household.Member{
		HouseholdID: h.ID,
		Name:        "Ana",
		Meals:       []string{"Dinner"},
	}); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	job, err := registry.Create(ctx, jobs.CreateRequest{
		HouseholdID: h.ID,
		WeekStart:   "2026-01-05",
	})
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	registry.Wait()

	finished, err := registry.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("Failed to reload job: %v", err)
	}
	if finished.Status != jobs.StatusCompleted {
		t.Fatalf("Job status = %s (error %q), want completed", finished.Status, finished.Error)
	}
	if mockLLM.generateContentCalls != 1 {
		t.Errorf("LLM called %d times, want exactly 1 (the architect)", mockLLM.generateContentCalls)
	}

	plan, err := plans.GetPlan(ctx, *finished.PlanID)
	if err != nil {
		t.Fatalf("Failed to load persisted plan: %v", err)
	}
	if len(plan.Entries) != 7 {
		t.Fatalf("Plan has %d entries, want 7 dinners", len(plan.Entries))
	}
	for _, e := range plan.Entries {
		if e.Slot != "Dinner" {
			t.Errorf("Unexpected slot %q for %s", e.Slot, e.Day)
		}
		// Curation may prefix a theme word, but the model's base title
		// must survive into the saved plan.
		if !strings.Contains(e.Title, "Model ") {
			t.Errorf("Entry %s/%s title %q did not come from the model draft", e.Day, e.Slot, e.Title)
		}
	}

	// The event stream must report the draft as model-sourced.
	events, unsubscribe, err := registry.Subscribe(ctx, job.ID, 0)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer unsubscribe()
	sourceSeen := ""
	for ev := range events {
		if ev.Stage != planner.StagePlanCandidate {
			continue
		}
		var payload struct {
			Source string `json:"source"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			t.Fatalf("Failed to decode candidate payload: %v", err)
		}
		sourceSeen = payload.Source
	}
	if sourceSeen != "model" {
		t.Errorf("Candidate source = %q, want model", sourceSeen)
	}
}
