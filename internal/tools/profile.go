// Package tools contains the deterministic capabilities the planning
// agents call: household profiling, nutrition analysis, pantry usage
// suggestions, shopping list generation, and calendar export.
package tools

import (
	"sort"
	"strings"
)

// ProfileMember is the member shape the profiler consumes.
type ProfileMember struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Allergens []string `json:"allergens"`
	Likes     []string `json:"likes"`
}

// LabelCount pairs a normalized label with how many members carry it.
type LabelCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HouseholdProfile is a compact, normalized description of a household.
type HouseholdProfile struct {
	MemberCount int            `json:"member_count"`
	Roles       map[string]int `json:"roles"`
	Allergens   []LabelCount   `json:"allergens"`
	TopLikes    []LabelCount   `json:"top_likes"`
}

// ProfileHousehold normalizes a household description into a compact profile.
// Allergen and like labels are lowercased and counted across members; likes
// are capped to the ten most common.
func ProfileHousehold(members []ProfileMember) HouseholdProfile {
	allergens := map[string]int{}
	likes := map[string]int{}
	roles := map[string]int{}

	for _, member := range members {
		for _, allergen := range member.Allergens {
			key := strings.ToLower(strings.TrimSpace(allergen))
			if key == "" {
				continue
			}
			allergens[key]++
		}
		for _, like := range member.Likes {
			key := strings.ToLower(strings.TrimSpace(like))
			if key == "" {
				continue
			}
			likes[key]++
		}
		role := strings.TrimSpace(member.Role)
		if role == "" {
			role = "Unknown"
		}
		roles[role]++
	}

	profile := HouseholdProfile{
		MemberCount: len(members),
		Roles:       roles,
		Allergens:   sortedLabelCounts(allergens),
		TopLikes:    sortedLabelCounts(likes),
	}
	if len(profile.TopLikes) > 10 {
		profile.TopLikes = profile.TopLikes[:10]
	}
	return profile
}

// sortedLabelCounts orders by descending count, then label, for stable output.
func sortedLabelCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, LabelCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
