package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"ecofood-backend/internal/recipes"
	"ecofood-backend/internal/shared"
	"ecofood-backend/internal/tools"
)

// Draft sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

//go:embed architect_prompt.md
var architectPrompt string

type planCell struct {
	Day  string
	Slot string
}

type architectPromptData struct {
	Profile      tools.HouseholdProfile
	EcoFriendly  bool
	UseLeftovers bool
	Pantry       []tools.PantryItem
	KitchenTools []string
	Notes        string
	Cells        []planCell
	Recipes      []recipes.Recipe
}

type rawArchitectResult struct {
	Meals []CandidateMeal `json:"meals"`
}

// DraftPlan asks the model for a full week draft and falls back to the
// recipe catalogue when no model is configured or the model call fails.
// Either way the returned draft covers every required cell and never
// schedules a meal containing a household allergen.
func (c *Crew) DraftPlan(ctx context.Context, req Request, profile tools.HouseholdProfile) (*Draft, error) {
	cells := requiredCells(req)
	allergens := allergenLabels(profile)

	candidates, err := c.candidateRecipes(ctx, req, allergens)
	if err != nil {
		return nil, err
	}

	if c.textGen == nil {
		return c.fallbackDraft(req, cells, candidates, ""), nil
	}

	draft, err := c.modelDraft(ctx, req, profile, cells, candidates, allergens)
	if err != nil {
		c.logger.Warn("architect model call failed, using catalogue fallback", zap.Error(err))
		return c.fallbackDraft(req, cells, candidates,
			"Model unavailable; drafted from the recipe catalogue instead."), nil
	}
	return draft, nil
}

func (c *Crew) modelDraft(
	ctx context.Context,
	req Request,
	profile tools.HouseholdProfile,
	cells []planCell,
	candidates []recipes.Recipe,
	allergens []string,
) (*Draft, error) {
	start := time.Now()
	prompt, err := buildArchitectPrompt(architectPromptData{
		Profile:      profile,
		EcoFriendly:  req.EcoFriendly,
		UseLeftovers: req.UseLeftovers,
		Pantry:       req.Pantry,
		KitchenTools: toolLabels(req),
		Notes:        req.Notes,
		Cells:        cells,
		Recipes:      candidates,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}
	meta := &shared.AgentMeta{
		AgentName: "Architect",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	raw := &rawArchitectResult{}
	if err := json.Unmarshal([]byte(resp.Content), raw); err != nil {
		return nil, fmt.Errorf("failed to parse architect response %w. Response: %s", err, resp.Content)
	}

	meals := c.sanitizeModelMeals(raw.Meals, cells, candidates, allergens)
	return &Draft{Meals: meals, Source: SourceModel, Meta: meta}, nil
}

// sanitizeModelMeals keeps one model meal per required cell, drops meals
// for unknown cells, replaces any meal carrying an allergen, and fills
// cells the model missed from the catalogue.
func (c *Crew) sanitizeModelMeals(
	raw []CandidateMeal,
	cells []planCell,
	candidates []recipes.Recipe,
	allergens []string,
) []CandidateMeal {
	wanted := map[planCell]bool{}
	for _, cell := range cells {
		wanted[cell] = true
	}

	byCell := map[planCell]CandidateMeal{}
	for _, meal := range raw {
		cell := planCell{Day: meal.Day, Slot: meal.Slot}
		if !wanted[cell] {
			continue
		}
		if mealContainsAllergen(meal, allergens) {
			continue
		}
		byCell[cell] = meal
	}

	picker := newRecipePicker(candidates)
	meals := make([]CandidateMeal, 0, len(cells))
	for _, cell := range cells {
		meal, ok := byCell[cell]
		if !ok {
			meal = picker.mealFor(cell)
		}
		meals = append(meals, meal)
	}
	return meals
}

// fallbackDraft builds a deterministic week from the recipe catalogue.
func (c *Crew) fallbackDraft(req Request, cells []planCell, candidates []recipes.Recipe, note string) *Draft {
	picker := newRecipePicker(candidates)
	meals := make([]CandidateMeal, 0, len(cells))
	for _, cell := range cells {
		meals = append(meals, picker.mealFor(cell))
	}
	return &Draft{Meals: meals, Source: SourceFallback, Notes: note}
}

// candidateRecipes pulls a pool of allergen-safe recipes for the draft.
// With use_leftovers set, recipes that use expiring pantry items are
// ranked to the front so they get scheduled first.
func (c *Crew) candidateRecipes(ctx context.Context, req Request, allergens []string) ([]recipes.Recipe, error) {
	pool, err := c.catalogue.Search(ctx, recipes.SearchFilter{Limit: 50})
	if err != nil {
		return nil, fmt.Errorf("recipe search failed: %w", err)
	}

	var safe []recipes.Recipe
	for _, r := range pool {
		excluded := false
		for _, allergen := range allergens {
			if r.ContainsAllergen(allergen) {
				excluded = true
				break
			}
		}
		if !excluded {
			safe = append(safe, r)
		}
	}

	if req.UseLeftovers && len(req.Pantry) > 0 {
		var usesPantry, rest []recipes.Recipe
		for _, r := range safe {
			if recipeUsesPantry(r, req.Pantry) {
				usesPantry = append(usesPantry, r)
			} else {
				rest = append(rest, r)
			}
		}
		safe = append(usesPantry, rest...)
	}
	return safe, nil
}

func recipeUsesPantry(r recipes.Recipe, pantry []tools.PantryItem) bool {
	for _, item := range pantry {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" {
			continue
		}
		for _, ing := range r.Ingredients {
			if strings.Contains(strings.ToLower(ing.Name), name) {
				return true
			}
		}
	}
	return false
}

// recipePicker deals recipes out per slot, cycling when the pool for a
// slot runs short so every cell gets a meal.
type recipePicker struct {
	bySlot map[string][]recipes.Recipe
	next   map[string]int
}

func newRecipePicker(candidates []recipes.Recipe) *recipePicker {
	p := &recipePicker{bySlot: map[string][]recipes.Recipe{}, next: map[string]int{}}
	for _, r := range candidates {
		if len(r.Slots) == 0 {
			p.bySlot["Dinner"] = append(p.bySlot["Dinner"], r)
			continue
		}
		for _, slot := range r.Slots {
			p.bySlot[slot] = append(p.bySlot[slot], r)
		}
	}
	return p
}

func (p *recipePicker) mealFor(cell planCell) CandidateMeal {
	pool := p.bySlot[cell.Slot]
	if len(pool) == 0 {
		// Nothing matches the slot; borrow from dinner or punt to a
		// simple placeholder meal.
		pool = p.bySlot["Dinner"]
	}
	if len(pool) == 0 {
		return CandidateMeal{
			Day: cell.Day, Slot: cell.Slot,
			Title:   "Cook's choice",
			Summary: "Free slot for a simple meal of your choosing.",
		}
	}
	r := pool[p.next[cell.Slot]%len(pool)]
	p.next[cell.Slot]++
	return CandidateMeal{
		Day:         cell.Day,
		Slot:        cell.Slot,
		Title:       r.Title,
		Summary:     r.Summary,
		Ingredients: r.Ingredients,
		Steps:       r.Steps,
		PrepMinutes: r.PrepMinutes,
		CookMinutes: r.CookMinutes,
		Calories:    r.Calories,
	}
}

func mealContainsAllergen(meal CandidateMeal, allergens []string) bool {
	blob := strings.ToLower(meal.Title)
	for _, ing := range meal.Ingredients {
		blob += " " + strings.ToLower(ing.Name)
	}
	for _, allergen := range allergens {
		needle := strings.ToLower(strings.TrimSpace(allergen))
		if needle != "" && strings.Contains(blob, needle) {
			return true
		}
	}
	return false
}

func allergenLabels(profile tools.HouseholdProfile) []string {
	labels := make([]string, 0, len(profile.Allergens))
	for _, a := range profile.Allergens {
		labels = append(labels, a.Name)
	}
	return labels
}

func toolLabels(req Request) []string {
	labels := make([]string, 0, len(req.Tools))
	for _, t := range req.Tools {
		labels = append(labels, t.Label)
	}
	return labels
}

func buildArchitectPrompt(data architectPromptData) (string, error) {
	tmpl, err := template.New("architect").Parse(architectPrompt)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
