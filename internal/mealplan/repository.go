package mealplan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"ecofood-backend/internal/recipes"
)

// ErrNotFound is returned when a plan or entry does not exist.
var ErrNotFound = fmt.Errorf("not found")

// Repository is the database-backed store for meal plans and entries.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SavePlan persists a plan and its entries. The week start is normalized
// to Monday, and an existing plan for the same (household, week) is
// replaced wholesale, entries included.
func (r *Repository) SavePlan(ctx context.Context, plan MealPlan) (*MealPlan, error) {
	week, err := NormalizeWeekStart(plan.WeekStart)
	if err != nil {
		return nil, err
	}
	plan.WeekStart = week
	// Plans saved outside a planning job still need a distinct session id.
	if plan.SessionID == "" {
		plan.SessionID = uuid.NewString()
	}

	timeline, err := json.Marshal(plan.Timeline)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeline: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace-on-save: the week's previous plan, if any, goes away first.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM meal_plans WHERE household_id = ? AND week_start = ?",
		plan.HouseholdID, plan.WeekStart); err != nil {
		return nil, fmt.Errorf("failed to clear previous plan: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO meal_plans (household_id, week_start, session_id, eco_friendly, use_leftovers, notes, timeline)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plan.HouseholdID, plan.WeekStart, plan.SessionID,
		boolToInt(plan.EcoFriendly), boolToInt(plan.UseLeftovers), plan.Notes, string(timeline))
	if err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	if plan.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read plan id: %w", err)
	}

	for i := range plan.Entries {
		entry := &plan.Entries[i]
		entry.PlanID = plan.ID
		if err := upsertEntryTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plan: %w", err)
	}
	return r.GetPlan(ctx, plan.ID)
}

// GetPlan loads a plan with its entries and timeline.
func (r *Repository) GetPlan(ctx context.Context, id int64) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, household_id, week_start, session_id, eco_friendly, use_leftovers,
		       COALESCE(notes, ''), COALESCE(timeline, '[]'), created_at
		FROM meal_plans WHERE id = ?`, id)
	return r.scanPlan(ctx, row)
}

// GetPlanForWeek loads the plan for a household's week, if one exists.
// The given date is normalized to Monday first.
func (r *Repository) GetPlanForWeek(ctx context.Context, householdID int64, weekStart string) (*MealPlan, error) {
	week, err := NormalizeWeekStart(weekStart)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, household_id, week_start, session_id, eco_friendly, use_leftovers,
		       COALESCE(notes, ''), COALESCE(timeline, '[]'), created_at
		FROM meal_plans WHERE household_id = ? AND week_start = ?`, householdID, week)
	return r.scanPlan(ctx, row)
}

// ListPlans returns a household's plans, newest week first, entries included.
func (r *Repository) ListPlans(ctx context.Context, householdID int64) ([]MealPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM meal_plans WHERE household_id = ? ORDER BY week_start DESC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan plan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plans := []MealPlan{}
	for _, id := range ids {
		plan, err := r.GetPlan(ctx, id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, nil
}

// DeletePlan removes a plan; its entries cascade.
func (r *Repository) DeletePlan(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM meal_plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertEntry inserts or replaces the entry at the plan's (day, slot)
// cell. At most one entry per cell ever exists.
func (r *Repository) UpsertEntry(ctx context.Context, entry *Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := upsertEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// GetEntry loads one entry.
func (r *Repository) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, plan_id, day, slot, COALESCE(title, ''), COALESCE(summary, ''),
		       ingredients, steps, COALESCE(prep_minutes, 0), COALESCE(cook_minutes, 0),
		       COALESCE(calories_per_person, 0), attendee_ids, guest_count
		FROM meal_plan_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// PatchEntry applies a partial edit to an entry and returns the result.
func (r *Repository) PatchEntry(ctx context.Context, id int64, patch EntryPatch) (*Entry, error) {
	entry, err := r.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		entry.Title = *patch.Title
	}
	if patch.Summary != nil {
		entry.Summary = *patch.Summary
	}
	if patch.AttendeeIDs != nil {
		entry.AttendeeIDs = *patch.AttendeeIDs
	}
	if patch.GuestCount != nil {
		entry.GuestCount = *patch.GuestCount
	}

	attendees, err := json.Marshal(entry.AttendeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attendee ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE meal_plan_entries SET title = ?, summary = ?, attendee_ids = ?, guest_count = ?
		WHERE id = ?`,
		entry.Title, entry.Summary, string(attendees), entry.GuestCount, id)
	if err != nil {
		return nil, fmt.Errorf("failed to patch entry: %w", err)
	}
	return entry, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertEntryTx(ctx context.Context, tx execer, entry *Entry) error {
	ingredients, err := json.Marshal(emptyIngredients(entry.Ingredients))
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	steps, err := json.Marshal(emptyStrings(entry.Steps))
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}
	attendees, err := json.Marshal(emptyInt64s(entry.AttendeeIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal attendee ids: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO meal_plan_entries
			(plan_id, day, slot, title, summary, ingredients, steps,
			 prep_minutes, cook_minutes, calories_per_person, attendee_ids, guest_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plan_id, day, slot) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			ingredients = excluded.ingredients,
			steps = excluded.steps,
			prep_minutes = excluded.prep_minutes,
			cook_minutes = excluded.cook_minutes,
			calories_per_person = excluded.calories_per_person,
			attendee_ids = excluded.attendee_ids,
			guest_count = excluded.guest_count`,
		entry.PlanID, entry.Day, entry.Slot, entry.Title, entry.Summary,
		string(ingredients), string(steps),
		entry.PrepMinutes, entry.CookMinutes, entry.Calories,
		string(attendees), entry.GuestCount)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		entry.ID = id
	}
	return nil
}

func (r *Repository) scanPlan(ctx context.Context, row *sql.Row) (*MealPlan, error) {
	var plan MealPlan
	var eco, leftovers int
	var timeline string
	err := row.Scan(&plan.ID, &plan.HouseholdID, &plan.WeekStart, &plan.SessionID,
		&eco, &leftovers, &plan.Notes, &timeline, &plan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}
	plan.EcoFriendly = eco != 0
	plan.UseLeftovers = leftovers != 0
	if err := json.Unmarshal([]byte(timeline), &plan.Timeline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline: %w", err)
	}

	if plan.Entries, err = r.listEntries(ctx, plan.ID); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *Repository) listEntries(ctx context.Context, planID int64) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, plan_id, day, slot, COALESCE(title, ''), COALESCE(summary, ''),
		       ingredients, steps, COALESCE(prep_minutes, 0), COALESCE(cook_minutes, 0),
		       COALESCE(calories_per_person, 0), attendee_ids, guest_count
		FROM meal_plan_entries WHERE plan_id = ? ORDER BY id`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var ingredients, steps, attendees string
	err := row.Scan(&e.ID, &e.PlanID, &e.Day, &e.Slot, &e.Title, &e.Summary,
		&ingredients, &steps, &e.PrepMinutes, &e.CookMinutes, &e.Calories,
		&attendees, &e.GuestCount)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ingredients), &e.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &e.Steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
	}
	if err := json.Unmarshal([]byte(attendees), &e.AttendeeIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attendee ids: %w", err)
	}
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func emptyIngredients(v []recipes.Ingredient) []recipes.Ingredient {
	if v == nil {
		return []recipes.Ingredient{}
	}
	return v
}

func emptyStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func emptyInt64s(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}
