// Package planner runs the meal-planning agent pipeline: profile the
// household, draft a week of meals, curate the menu, review it for
// nutrition and pantry usage in parallel, then synthesize the final
// plan with its shopping list and calendar export.
package planner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ecofood-backend/internal/household"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/recipes"
	"ecofood-backend/internal/shared"
	"ecofood-backend/internal/tools"
)

// Request is the snapshot of household data one pipeline run works on.
// Concurrent edits to the household do not affect a run in flight.
type Request struct {
	HouseholdID  int64                   `json:"household_id"`
	WeekStart    string                  `json:"week_start" validate:"required"`
	EcoFriendly  bool                    `json:"eco_friendly"`
	UseLeftovers bool                    `json:"use_leftovers"`
	Notes        string                  `json:"notes"`
	Members      []household.Member      `json:"members"`
	Tools        []household.KitchenTool `json:"kitchen_tools"`
	Pantry       []tools.PantryItem      `json:"pantry"`
}

// CandidateMeal is one drafted meal before synthesis.
type CandidateMeal struct {
	Day         string               `json:"day"`
	Slot        string               `json:"slot"`
	Title       string               `json:"title"`
	Summary     string               `json:"summary,omitempty"`
	Ingredients []recipes.Ingredient `json:"ingredients,omitempty"`
	Steps       []string             `json:"steps,omitempty"`
	PrepMinutes int                  `json:"prep_minutes,omitempty"`
	CookMinutes int                  `json:"cook_minutes,omitempty"`
	Calories    int                  `json:"calories_per_person,omitempty"`
	PantryHint  string               `json:"pantry_hint,omitempty"`
	Theme       string               `json:"chef_theme,omitempty"`
	Technique   string               `json:"chef_technique,omitempty"`
	Pairing     string               `json:"chef_pairing,omitempty"`
}

// Draft is the architect's proposed week. Curation fills Themes and
// Story; they are empty on the raw draft.
type Draft struct {
	Meals  []CandidateMeal
	Source string // "model" or "fallback"
	Notes  string
	Themes []string
	Story  string
	Meta   *shared.AgentMeta
}

// PantryReview is the pantry reviewer's output: usage suggestions plus
// the draft annotated with per-meal pantry hints.
type PantryReview struct {
	Suggestions   tools.PantryUsage `json:"suggestions"`
	AnnotatedPlan []CandidateMeal   `json:"annotated_plan"`
}

// Reviews holds whichever reviewer outputs succeeded. A nil field means
// that reviewer failed and its section is absent from the final payload.
type Reviews struct {
	Nutrition *tools.NutritionAnalysis
	Pantry    *PantryReview
}

// Synthesis is the pipeline's final product.
type Synthesis struct {
	Entries      []mealplan.Entry
	ShoppingList tools.ShoppingList
	Calendar     tools.CalendarExport
}

// Result bundles everything one pipeline run produced.
type Result struct {
	Profile      tools.HouseholdProfile
	Source       string
	Entries      []mealplan.Entry
	ShoppingList tools.ShoppingList
	Calendar     tools.CalendarExport
	Reviews      Reviews
	Metas        []shared.AgentMeta
}

// Capabilities are the pluggable operations each stage calls. The
// default implementation is Crew; tests substitute failing or canned
// capabilities.
type Capabilities interface {
	ProfileHousehold(ctx context.Context, members []household.Member) (tools.HouseholdProfile, error)
	DraftPlan(ctx context.Context, req Request, profile tools.HouseholdProfile) (*Draft, error)
	CurateMenu(ctx context.Context, req Request, profile tools.HouseholdProfile, draft *Draft) (*Draft, error)
	ReviewNutrition(ctx context.Context, draft *Draft) (*tools.NutritionAnalysis, error)
	ReviewPantry(ctx context.Context, req Request, draft *Draft) (*PantryReview, error)
	Synthesize(ctx context.Context, req Request, draft *Draft, reviews Reviews) (*Synthesis, error)
}

// Workflow drives one planning run through the fixed stage sequence.
type Workflow struct {
	caps   Capabilities
	logger *zap.Logger
}

// NewWorkflow creates a Workflow.
func NewWorkflow(caps Capabilities, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{caps: caps, logger: logger}
}

// Generate runs the pipeline: profiling, architecting, menu curation,
// the two reviewers in parallel, then synthesis. Profiler, architect,
// chef, and synthesizer failures abort the run; a reviewer failure only
// drops that reviewer's section. Cancellation is checked between stages.
func (w *Workflow) Generate(ctx context.Context, req Request, sink EventSink) (*Result, error) {
	if sink == nil {
		sink = DiscardSink
	}
	result := &Result{}

	// Stage 1: profiling.
	profile, err := w.caps.ProfileHousehold(ctx, req.Members)
	if err != nil {
		return nil, fmt.Errorf("profiler failed: %w", err)
	}
	result.Profile = profile
	sink.Emit(StageProfileReady,
		fmt.Sprintf("Profiled %d household member(s)", profile.MemberCount),
		map[string]any{"profile": profile})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: architecting.
	draft, err := w.caps.DraftPlan(ctx, req, profile)
	if err != nil {
		return nil, fmt.Errorf("architect failed: %w", err)
	}
	result.Source = draft.Source
	if draft.Meta != nil {
		result.Metas = append(result.Metas, *draft.Meta)
	}
	if draft.Source == SourceFallback && draft.Notes != "" {
		sink.Emit(StageFallback, draft.Notes, nil)
	}
	emitCandidates(sink, draft)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: curation. The chef works over the raw draft; reviewers
	// and synthesis see the curated meals.
	draft, err = w.caps.CurateMenu(ctx, req, profile, draft)
	if err != nil {
		return nil, fmt.Errorf("chef curation failed: %w", err)
	}
	sink.Emit(StagePlanned,
		fmt.Sprintf("Curated %d meal(s) for the week", len(draft.Meals)),
		map[string]any{"themes": draft.Themes, "menu_story": draft.Story})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: nutrition and pantry reviewers, concurrently. Both must
	// report before synthesis; individual failures degrade gracefully.
	result.Reviews = w.runReviewers(ctx, req, draft, sink)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 5: synthesis.
	synthesis, err := w.caps.Synthesize(ctx, req, draft, result.Reviews)
	if err != nil {
		return nil, fmt.Errorf("synthesizer failed: %w", err)
	}
	result.Entries = synthesis.Entries
	result.ShoppingList = synthesis.ShoppingList
	result.Calendar = synthesis.Calendar

	sink.Emit(StagePlanFinal, "Plan synthesized", map[string]any{
		"plan":          synthesis.Entries,
		"shopping_list": synthesis.ShoppingList,
		"calendar": map[string]any{
			"ics":         synthesis.Calendar.ICS,
			"event_count": synthesis.Calendar.EventCount,
		},
		"reviews": reviewsMap(result.Reviews),
	})
	return result, nil
}

// emitCandidates publishes one plan.candidate event per drafted day, in
// week order, so a calendar view can fill in meal-by-meal.
func emitCandidates(sink EventSink, draft *Draft) {
	byDay := map[string][]CandidateMeal{}
	for _, meal := range draft.Meals {
		byDay[meal.Day] = append(byDay[meal.Day], meal)
	}
	for _, day := range household.Days {
		meals, ok := byDay[day]
		if !ok {
			continue
		}
		payload := map[string]any{"plan": meals, "source": draft.Source}
		if draft.Notes != "" {
			payload["notes"] = draft.Notes
		}
		sink.Emit(StagePlanCandidate, fmt.Sprintf("Drafted %s", day), payload)
	}
}

func (w *Workflow) runReviewers(ctx context.Context, req Request, draft *Draft, sink EventSink) Reviews {
	var reviews Reviews

	type reviewerDone struct {
		name string
		emit func()
		err  error
	}
	done := make(chan reviewerDone, 2)

	go func() {
		analysis, err := w.caps.ReviewNutrition(ctx, draft)
		if err == nil {
			reviews.Nutrition = analysis
		}
		done <- reviewerDone{name: "nutrition", err: err, emit: func() {
			sink.Emit(StageReviewNutrition, "Nutrition review complete",
				map[string]any{"analysis": analysis})
		}}
	}()
	go func() {
		review, err := w.caps.ReviewPantry(ctx, req, draft)
		if err == nil {
			reviews.Pantry = review
		}
		done <- reviewerDone{name: "pantry", err: err, emit: func() {
			sink.Emit(StageReviewPantry, "Pantry review complete", map[string]any{
				"suggestions":    review.Suggestions,
				"annotated_plan": review.AnnotatedPlan,
			})
		}}
	}()

	for i := 0; i < 2; i++ {
		r := <-done
		if r.err != nil {
			// Reviewer failures are non-fatal; the section is absent.
			w.logger.Warn("reviewer failed",
				zap.String("reviewer", r.name), zap.Error(r.err))
			continue
		}
		r.emit()
	}
	return reviews
}

// reviewsMap renders the reviews for the final event payload, omitting
// any reviewer that failed.
func reviewsMap(reviews Reviews) map[string]any {
	out := map[string]any{}
	if reviews.Nutrition != nil {
		out["nutrition"] = reviews.Nutrition
	}
	if reviews.Pantry != nil {
		out["pantry"] = map[string]any{
			"suggestions":    reviews.Pantry.Suggestions,
			"annotated_plan": reviews.Pantry.AnnotatedPlan,
		}
	}
	return out
}
