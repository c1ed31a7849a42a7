package household

// Week labels in canonical order. Plans and schedules share these.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Meal slots in canonical order.
var Slots = []string{"Breakfast", "Lunch", "Dinner"}

// MealSchedule is a member's attendance grid: day -> slot -> attends.
// The grid is the canonical representation; the flat per-slot meals list
// is always derived from it.
type MealSchedule map[string]map[string]bool

// FullSchedule returns a grid with every day/slot cell set to attend.
func FullSchedule() MealSchedule {
	s := MealSchedule{}
	for _, day := range Days {
		s[day] = map[string]bool{}
		for _, slot := range Slots {
			s[day][slot] = true
		}
	}
	return s
}

// Normalize fills in any missing day or slot cells as false and drops
// unknown labels, so a stored schedule always round-trips to a full
// 7x3 grid.
func (s MealSchedule) Normalize() MealSchedule {
	out := MealSchedule{}
	for _, day := range Days {
		out[day] = map[string]bool{}
		for _, slot := range Slots {
			out[day][slot] = s != nil && s[day] != nil && s[day][slot]
		}
	}
	return out
}

// Meals derives the flat slot list: the slots the member attends on at
// least one day, in canonical slot order.
func (s MealSchedule) Meals() []string {
	meals := []string{}
	for _, slot := range Slots {
		for _, day := range Days {
			if s != nil && s[day] != nil && s[day][slot] {
				meals = append(meals, slot)
				break
			}
		}
	}
	return meals
}

// ScheduleFromMeals builds a full-week grid from a flat slot list:
// each named slot is attended every day. Used when a client only
// supplies the simple meals view.
func ScheduleFromMeals(meals []string) MealSchedule {
	wanted := map[string]bool{}
	for _, m := range meals {
		wanted[m] = true
	}
	s := MealSchedule{}
	for _, day := range Days {
		s[day] = map[string]bool{}
		for _, slot := range Slots {
			s[day][slot] = wanted[slot]
		}
	}
	return s
}

// AttendsOn reports whether the member attends the given day and slot.
func (s MealSchedule) AttendsOn(day, slot string) bool {
	return s != nil && s[day] != nil && s[day][slot]
}
