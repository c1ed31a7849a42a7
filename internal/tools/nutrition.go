package tools

import (
	"sort"
	"strings"
)

// NutritionEstimate holds coarse per-meal macro numbers.
type NutritionEstimate struct {
	CaloriesEstimate int `json:"calories_estimate"`
	ProteinG         int `json:"protein_g"`
	CarbsG           int `json:"carbs_g"`
	FatG             int `json:"fat_g"`
	FiberG           int `json:"fiber_g"`
}

// NutritionAnalysis is the nutrition reviewer's verdict on a plan.
type NutritionAnalysis struct {
	Summary  string            `json:"summary"`
	Estimate NutritionEstimate `json:"estimate"`
	Labels   []string          `json:"labels"`
}

// AnalyzeNutrition provides a coarse nutritional analysis of a meal or a
// short meal plan. Heuristic and non-authoritative; it gives agents a rough
// sense of balance, not dietary advice.
func AnalyzeNutrition(text string) NutritionAnalysis {
	lowered := strings.ToLower(text)

	estimate := NutritionEstimate{
		CaloriesEstimate: 550,
		ProteinG:         25,
		CarbsG:           55,
		FatG:             20,
		FiberG:           8,
	}
	labels := map[string]struct{}{}

	if containsAny(lowered, "salmon", "chicken", "tofu", "lentil", "beans") {
		estimate.ProteinG += 10
		labels["high-protein"] = struct{}{}
	}
	if containsAny(lowered, "fried", "butter", "cream", "cheese") {
		estimate.FatG += 8
		labels["rich"] = struct{}{}
	}
	if containsAny(lowered, "whole grain", "quinoa", "brown rice", "oats") {
		estimate.FiberG += 3
		labels["whole-grain"] = struct{}{}
	}
	if containsAny(lowered, "broccoli", "spinach", "kale", "carrot", "pepper") {
		estimate.FiberG += 2
		labels["veg-forward"] = struct{}{}
	}

	sortedLabels := make([]string, 0, len(labels))
	for label := range labels {
		sortedLabels = append(sortedLabels, label)
	}
	sort.Strings(sortedLabels)

	return NutritionAnalysis{
		Summary:  "Coarse, heuristic nutrition estimate, not medical advice.",
		Estimate: estimate,
		Labels:   sortedLabels,
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
