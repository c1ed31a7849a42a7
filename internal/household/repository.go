package household

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// ErrNotFound is returned when a household, member, or tool does not exist.
var ErrNotFound = fmt.Errorf("not found")

// Repository is the database-backed store for households, members, and
// kitchen tools.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateHousehold inserts a household and seeds it with the default
// kitchen tools.
func (r *Repository) CreateHousehold(ctx context.Context, name string) (*Household, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO households (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create household: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read household id: %w", err)
	}

	for _, tool := range DefaultKitchenTools() {
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO kitchen_tools (household_id, label, category, quantity) VALUES (?, ?, ?, ?)",
			id, tool.Label, tool.Category, tool.Quantity); err != nil {
			return nil, fmt.Errorf("failed to seed kitchen tools: %w", err)
		}
	}

	return r.GetHousehold(ctx, id)
}

// GetHousehold loads a household with its members and tools.
func (r *Repository) GetHousehold(ctx context.Context, id int64) (*Household, error) {
	h := Household{ID: id}
	err := r.db.QueryRowContext(ctx,
		"SELECT name, created_at FROM households WHERE id = ?", id).
		Scan(&h.Name, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}

	if h.Members, err = r.ListMembers(ctx, id); err != nil {
		return nil, err
	}
	if h.Tools, err = r.ListTools(ctx, id); err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHouseholds returns all households without their members loaded.
func (r *Repository) ListHouseholds(ctx context.Context) ([]Household, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM households ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	defer rows.Close()

	var result []Household
	for rows.Next() {
		var h Household
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan household row: %w", err)
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// RenameHousehold updates a household's name.
func (r *Repository) RenameHousehold(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE households SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("failed to rename household: %w", err)
	}
	return requireRow(res)
}

// DeleteHousehold removes a household; members, tools, and plans cascade.
func (r *Repository) DeleteHousehold(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM households WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete household: %w", err)
	}
	return requireRow(res)
}

// AddMember inserts a member. A nil schedule defaults to full attendance.
func (r *Repository) AddMember(ctx context.Context, m Member) (*Member, error) {
	if m.Schedule == nil {
		if len(m.Meals) > 0 {
			m.Schedule = ScheduleFromMeals(m.Meals)
		} else {
			m.Schedule = FullSchedule()
		}
	}
	m.Schedule = m.Schedule.Normalize()
	m.Role = NormalizeRole(m.Role)

	allergens, likes, schedule, err := marshalMemberFields(m)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO household_members (household_id, name, role, allergens, likes, meal_schedule)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.HouseholdID, m.Name, m.Role, allergens, likes, schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read member id: %w", err)
	}
	m.Meals = m.Schedule.Meals()
	return &m, nil
}

// GetMember loads one member.
func (r *Repository) GetMember(ctx context.Context, id int64) (*Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, household_id, name, role, allergens, likes, meal_schedule
		FROM household_members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// ListMembers returns all members of a household.
func (r *Repository) ListMembers(ctx context.Context, householdID int64) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, name, role, allergens, likes, meal_schedule
		FROM household_members WHERE household_id = ? ORDER BY id`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// UpdateMember replaces a member's name, role, allergens, and likes.
// The schedule is updated separately via UpdateMemberSchedule.
func (r *Repository) UpdateMember(ctx context.Context, m Member) error {
	allergens, err := json.Marshal(emptyIfNil(m.Allergens))
	if err != nil {
		return fmt.Errorf("failed to marshal allergens: %w", err)
	}
	likes, err := json.Marshal(emptyIfNil(m.Likes))
	if err != nil {
		return fmt.Errorf("failed to marshal likes: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE household_members SET name = ?, role = ?, allergens = ?, likes = ?
		WHERE id = ?`,
		m.Name, NormalizeRole(m.Role), string(allergens), string(likes), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return requireRow(res)
}

// UpdateMemberSchedule stores a member's attendance grid. The grid is
// normalized to a full week before it is written.
func (r *Repository) UpdateMemberSchedule(ctx context.Context, memberID int64, schedule MealSchedule) (*Member, error) {
	data, err := json.Marshal(schedule.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schedule: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE household_members SET meal_schedule = ? WHERE id = ?", string(data), memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to update member schedule: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return r.GetMember(ctx, memberID)
}

// DeleteMember removes a member.
func (r *Repository) DeleteMember(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM household_members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return requireRow(res)
}

// AddTool inserts a kitchen tool.
func (r *Repository) AddTool(ctx context.Context, t KitchenTool) (*KitchenTool, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO kitchen_tools (household_id, label, category, quantity) VALUES (?, ?, ?, ?)",
		t.HouseholdID, t.Label, t.Category, t.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add kitchen tool: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read tool id: %w", err)
	}
	return &t, nil
}

// ListTools returns a household's kitchen tools.
func (r *Repository) ListTools(ctx context.Context, householdID int64) ([]KitchenTool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, label, category, quantity
		FROM kitchen_tools WHERE household_id = ? ORDER BY id`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kitchen tools: %w", err)
	}
	defer rows.Close()

	tools := []KitchenTool{}
	for rows.Next() {
		var t KitchenTool
		var category sql.NullString
		if err := rows.Scan(&t.ID, &t.HouseholdID, &t.Label, &category, &t.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan tool row: %w", err)
		}
		t.Category = category.String
		tools = append(tools, t)
	}
	return tools, rows.Err()
}

// UpdateTool replaces a tool's label, category, and quantity.
func (r *Repository) UpdateTool(ctx context.Context, t KitchenTool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE kitchen_tools SET label = ?, category = ?, quantity = ? WHERE id = ?",
		t.Label, t.Category, t.Quantity, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update kitchen tool: %w", err)
	}
	return requireRow(res)
}

// DeleteTool removes a kitchen tool.
func (r *Repository) DeleteTool(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM kitchen_tools WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete kitchen tool: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*Member, error) {
	var m Member
	var allergens, likes, schedule string
	if err := row.Scan(&m.ID, &m.HouseholdID, &m.Name, &m.Role, &allergens, &likes, &schedule); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(allergens), &m.Allergens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allergens: %w", err)
	}
	if err := json.Unmarshal([]byte(likes), &m.Likes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal likes: %w", err)
	}
	var grid MealSchedule
	if err := json.Unmarshal([]byte(schedule), &grid); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal schedule: %w", err)
	}
	m.Schedule = grid.Normalize()
	m.Meals = m.Schedule.Meals()
	return &m, nil
}

func marshalMemberFields(m Member) (allergens, likes, schedule string, err error) {
	a, err := json.Marshal(emptyIfNil(m.Allergens))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal allergens: %w", err)
	}
	l, err := json.Marshal(emptyIfNil(m.Likes))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal likes: %w", err)
	}
	s, err := json.Marshal(m.Schedule)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal meal schedule: %w", err)
	}
	return string(a), string(l), string(s), nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
