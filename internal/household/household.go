// Package household holds the household aggregate: members with their
// allergens, likes, and attendance schedules, plus the kitchen tools the
// planner takes into account.
package household

import (
	"strings"
	"time"
)

// Member roles.
const (
	RoleAdult = "Adult"
	RoleChild = "Child"
	RoleGuest = "Guest"
)

// Household is the root aggregate. It owns its members and kitchen tools.
type Household struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name" validate:"required"`
	Members   []Member      `json:"members"`
	Tools     []KitchenTool `json:"kitchen_tools"`
	CreatedAt time.Time     `json:"created_at"`
}

// Member is one person in the household.
type Member struct {
	ID          int64        `json:"id"`
	HouseholdID int64        `json:"household_id"`
	Name        string       `json:"name" validate:"required"`
	Role        string       `json:"role" validate:"omitempty,oneof=Adult Child Guest"`
	Allergens   []string     `json:"allergens"`
	Likes       []string     `json:"likes"`
	Schedule    MealSchedule `json:"meal_schedule"`
	// Meals is derived from Schedule; it lists the slots the member ever
	// attends, ignoring days. Never stored, always recomputed.
	Meals []string `json:"meals"`
}

// KitchenTool is one piece of kitchen equipment, e.g. "Large pan".
type KitchenTool struct {
	ID          int64  `json:"id"`
	HouseholdID int64  `json:"household_id"`
	Label       string `json:"label" validate:"required"`
	Category    string `json:"category,omitempty"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
}

// NormalizeRole maps arbitrary role input onto the known roles,
// defaulting to Adult.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "child", "kid":
		return RoleChild
	case "guest":
		return RoleGuest
	default:
		return RoleAdult
	}
}

// DefaultKitchenTools is the starter equipment seeded into every new
// household so the planner has something to work with.
func DefaultKitchenTools() []KitchenTool {
	return []KitchenTool{
		{Label: "Small pan", Category: "pan", Quantity: 1},
		{Label: "Medium pan", Category: "pan", Quantity: 1},
		{Label: "Large pan", Category: "pan", Quantity: 1},
		{Label: "Medium casserole", Category: "casserole", Quantity: 1},
		{Label: "Large casserole", Category: "casserole", Quantity: 1},
		{Label: "Cake mold", Category: "mold", Quantity: 1},
		{Label: "Tart mold", Category: "mold", Quantity: 1},
	}
}
