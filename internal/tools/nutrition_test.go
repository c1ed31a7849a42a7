package tools

import (
	"testing"
)

func TestAnalyzeNutritionBaseline(t *testing.T) {
	analysis := AnalyzeNutrition("plain toast")
	if analysis.Estimate.CaloriesEstimate != 550 {
		t.Errorf("Expected baseline calories 550, got %d", analysis.Estimate.CaloriesEstimate)
	}
	if len(analysis.Labels) != 0 {
		t.Errorf("Expected no labels, got %v", analysis.Labels)
	}
	if analysis.Summary == "" {
		t.Error("Expected a non-empty summary")
	}
}

func TestAnalyzeNutritionKeywordBumps(t *testing.T) {
	analysis := AnalyzeNutrition("Grilled Salmon with brown rice and spinach")

	if analysis.Estimate.ProteinG != 35 {
		t.Errorf("Expected protein bump to 35, got %d", analysis.Estimate.ProteinG)
	}
	if analysis.Estimate.FiberG != 13 {
		t.Errorf("Expected fiber bumps to 13, got %d", analysis.Estimate.FiberG)
	}

	expected := []string{"high-protein", "veg-forward", "whole-grain"}
	if len(analysis.Labels) != len(expected) {
		t.Fatalf("Expected labels %v, got %v", expected, analysis.Labels)
	}
	for i, label := range expected {
		if analysis.Labels[i] != label {
			t.Errorf("Expected label %q at %d, got %q", label, i, analysis.Labels[i])
		}
	}
}
