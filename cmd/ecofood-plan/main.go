package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ecofood-backend/internal/config"
	"ecofood-backend/internal/database"
	"ecofood-backend/internal/household"
	"ecofood-backend/internal/llm"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/planner"
	"ecofood-backend/internal/recipes"
)

// ecofood-plan generates one week's plan from the command line and
// prints it, without going through the HTTP server. Useful for trying
// out prompts and for planning when the server is not running.
func main() {
	householdID := flag.Int64("household", 0, "Household ID to plan for (0 plans for a generic household)")
	weekStart := flag.String("week", "", "Week start date, YYYY-MM-DD (defaults to next Monday)")
	eco := flag.Bool("eco", false, "Prefer seasonal, low-impact meals")
	leftovers := flag.Bool("leftovers", false, "Prioritize pantry items that are about to expire")
	notes := flag.String("notes", "", "Free-form instructions for the planner")
	requestFile := flag.String("request", "", "Path to a JSON planning request (overrides the other flags)")
	save := flag.Bool("save", false, "Persist the generated plan")
	flag.Parse()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var textGen llm.TextGenerator
	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		if closer, ok := gemini.(llm.Closer); ok {
			defer closer.Close()
		}
		textGen = gemini
	case "groq":
		textGen = llm.NewGroqClient(cfg)
	}

	var req planner.Request
	if *requestFile != "" {
		raw, err := os.ReadFile(*requestFile)
		if err != nil {
			log.Fatalf("Failed to read request file: %v", err)
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Fatalf("Invalid request file: %v", err)
		}
	} else {
		req = planner.Request{
			HouseholdID:  *householdID,
			WeekStart:    *weekStart,
			EcoFriendly:  *eco,
			UseLeftovers: *leftovers,
			Notes:        *notes,
		}
	}

	if req.WeekStart == "" {
		req.WeekStart = time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	}
	week, err := mealplan.NormalizeWeekStart(req.WeekStart)
	if err != nil {
		log.Fatalf("Invalid week: %v", err)
	}
	req.WeekStart = week

	households := household.NewRepository(db.SQL)
	if req.HouseholdID > 0 && len(req.Members) == 0 {
		h, err := households.GetHousehold(ctx, req.HouseholdID)
		if err != nil {
			log.Fatalf("Household %d: %v", req.HouseholdID, err)
		}
		req.Members = h.Members
		req.Tools = h.Tools
	} else if len(req.Tools) == 0 {
		req.Tools = household.DefaultKitchenTools()
	}

	catalogue := recipes.NewCatalogue(recipes.NewRepository(db.SQL))
	workflow := planner.NewWorkflow(planner.NewCrew(catalogue, textGen, nil), nil)

	result, err := workflow.Generate(ctx, req, progressSink{})
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}

	fmt.Printf("\nMeal plan for the week of %s (%s draft)\n\n", week, result.Source)
	for _, e := range result.Entries {
		fmt.Printf("  %-10s %-10s %s\n", e.Day, e.Slot, e.Title)
	}

	if len(result.ShoppingList.All) > 0 {
		fmt.Printf("\nShopping list (%d items):\n", len(result.ShoppingList.All))
		for _, item := range result.ShoppingList.All {
			fmt.Printf("  - %s\n", item)
		}
	}

	if !*save {
		return
	}
	if req.HouseholdID == 0 {
		fmt.Fprintln(os.Stderr, "Cannot save without a household")
		os.Exit(1)
	}
	plan := mealplan.MealPlan{
		HouseholdID:  req.HouseholdID,
		WeekStart:    week,
		EcoFriendly:  req.EcoFriendly,
		UseLeftovers: req.UseLeftovers,
		Notes:        req.Notes,
		Entries:      result.Entries,
	}
	saved, err := mealplan.NewRepository(db.SQL).SavePlan(ctx, plan)
	if err != nil {
		log.Fatalf("Failed to save plan: %v", err)
	}
	fmt.Printf("\nSaved as plan %d.\n", saved.ID)
}

// progressSink prints pipeline progress to stderr as it happens.
type progressSink struct{}

func (progressSink) Emit(stage, message string, _ any) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", stage, message)
}
