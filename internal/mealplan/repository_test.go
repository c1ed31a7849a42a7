package mealplan

import (
	"context"
	"path/filepath"
	"testing"

	"ecofood-backend/internal/database"
	"ecofood-backend/internal/household"
)

func newTestRepo(t *testing.T) (*Repository, int64) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h, err := household.NewRepository(db.SQL).CreateHousehold(context.Background(), "Test")
	if err != nil {
		t.Fatalf("Failed to create household: %v", err)
	}
	return NewRepository(db.SQL), h.ID
}

func TestSavePlanNormalizesWeek(t *testing.T) {
	repo, hid := newTestRepo(t)

	plan, err := repo.SavePlan(context.Background(), MealPlan{
		HouseholdID: hid,
		WeekStart:   "2026-01-08", // a Thursday
		SessionID:   "session-1",
		Entries: []Entry{
			{Day: "Monday", Slot: "Dinner", Title: "Salmon bowl"},
		},
	})
	if err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}
	if plan.WeekStart != "2026-01-05" {
		t.Errorf("Expected week normalized to Monday, got %s", plan.WeekStart)
	}
	if len(plan.Entries) != 1 || plan.Entries[0].Title != "Salmon bowl" {
		t.Errorf("Unexpected entries: %+v", plan.Entries)
	}
}

func TestSavePlanReplacesExistingWeek(t *testing.T) {
	repo, hid := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.SavePlan(ctx, MealPlan{
		HouseholdID: hid, WeekStart: "2026-01-05", SessionID: "session-1",
		Entries: []Entry{
			{Day: "Monday", Slot: "Dinner", Title: "Old dinner"},
			{Day: "Tuesday", Slot: "Lunch", Title: "Old lunch"},
		},
	})
	if err != nil {
		t.Fatalf("First SavePlan failed: %v", err)
	}

	// Saving under a different date in the same week replaces the plan.
	second, err := repo.SavePlan(ctx, MealPlan{
		HouseholdID: hid, WeekStart: "2026-01-09", SessionID: "session-2",
		Entries: []Entry{{Day: "Monday", Slot: "Dinner", Title: "New dinner"}},
	})
	if err != nil {
		t.Fatalf("Second SavePlan failed: %v", err)
	}

	if _, err := repo.GetPlan(ctx, first.ID); err != ErrNotFound {
		t.Errorf("Expected first plan gone, got %v", err)
	}
	current, err := repo.GetPlanForWeek(ctx, hid, "2026-01-05")
	if err != nil {
		t.Fatalf("GetPlanForWeek failed: %v", err)
	}
	if current.ID != second.ID {
		t.Errorf("Expected replacement plan for the week, got %d", current.ID)
	}
	if len(current.Entries) != 1 || current.Entries[0].Title != "New dinner" {
		t.Errorf("Old entries still visible: %+v", current.Entries)
	}
}

func TestUpsertEntryNoDuplicates(t *testing.T) {
	repo, hid := newTestRepo(t)
	ctx := context.Background()

	plan, err := repo.SavePlan(ctx, MealPlan{HouseholdID: hid, WeekStart: "2026-01-05", SessionID: "s"})
	if err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}

	// Same cell written twice must end up as one entry, last write wins.
	for _, title := range []string{"Draft dinner", "Final dinner"} {
		entry := Entry{PlanID: plan.ID, Day: "Wednesday", Slot: "Dinner", Title: title}
		if err := repo.UpsertEntry(ctx, &entry); err != nil {
			t.Fatalf("UpsertEntry failed: %v", err)
		}
	}

	got, err := repo.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("Expected a single entry for the cell, got %d", len(got.Entries))
	}
	if got.Entries[0].Title != "Final dinner" {
		t.Errorf("Expected last write to win, got %s", got.Entries[0].Title)
	}
}

func TestPatchEntry(t *testing.T) {
	repo, hid := newTestRepo(t)
	ctx := context.Background()

	plan, _ := repo.SavePlan(ctx, MealPlan{
		HouseholdID: hid, WeekStart: "2026-01-05", SessionID: "s",
		Entries: []Entry{{Day: "Friday", Slot: "Lunch", Title: "Bento", GuestCount: 0}},
	})
	entryID := plan.Entries[0].ID

	title := "Deluxe bento"
	guests := 2
	patched, err := repo.PatchEntry(ctx, entryID, EntryPatch{Title: &title, GuestCount: &guests})
	if err != nil {
		t.Fatalf("PatchEntry failed: %v", err)
	}
	if patched.Title != "Deluxe bento" || patched.GuestCount != 2 {
		t.Errorf("Patch not applied: %+v", patched)
	}
	// Untouched fields survive.
	if patched.Day != "Friday" || patched.Slot != "Lunch" {
		t.Errorf("Unrelated fields changed: %+v", patched)
	}

	if _, err := repo.PatchEntry(ctx, 99999, EntryPatch{Title: &title}); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for missing entry, got %v", err)
	}
}

func TestDeletePlan(t *testing.T) {
	repo, hid := newTestRepo(t)
	ctx := context.Background()

	plan, _ := repo.SavePlan(ctx, MealPlan{HouseholdID: hid, WeekStart: "2026-01-05", SessionID: "s"})
	if err := repo.DeletePlan(ctx, plan.ID); err != nil {
		t.Fatalf("DeletePlan failed: %v", err)
	}
	if err := repo.DeletePlan(ctx, plan.ID); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound on double delete, got %v", err)
	}
}
