package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/eventpilot/eventpilot/internal/budget"
	"github.com/eventpilot/eventpilot/internal/types"
)

func completeResults() map[string]any {
	return map[string]any{
		"event_name": "team lunch",
		"feasible_slots": []types.Slot{
			{Date: "2025-07-10", StartTime: "09:00", EndTime: "11:00"},
			{Date: "2025-07-10", StartTime: "13:00", EndTime: "15:00"},
		},
		"selected_slot": types.Slot{Date: "2025-07-10", StartTime: "13:00", EndTime: "15:00"},
		"nearby_places": []types.Place{
			{Name: "Cafe Alpha"},
			{Name: "Cafe Beta"},
		},
		"budget_estimate":  budget.Estimate(4, 2, "Malad"),
		"number_of_people": float64(4),
		"duration_hours":   float64(2),
		"location":         "Malad",
	}
}

func TestBuildSummary_Complete(t *testing.T) {
	summary, err := BuildSummary(context.Background(), completeResults())
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}

	if summary.EventName != "team lunch" {
		t.Errorf("event = %q", summary.EventName)
	}
	if summary.SelectedSlot == nil || summary.SelectedSlot.StartTime != "13:00" {
		t.Errorf("selected slot = %+v", summary.SelectedSlot)
	}
	if len(summary.VenueBudgets) != 2 {
		t.Fatalf("venue budgets = %d, want one per venue", len(summary.VenueBudgets))
	}
	for _, vb := range summary.VenueBudgets {
		if vb.Estimate.TotalBudget != 2400 {
			t.Errorf("venue %s budget = %v, want 2400", vb.Venue, vb.Estimate.TotalBudget)
		}
	}
}

func TestBuildSummary_MissingKeys(t *testing.T) {
	results := completeResults()
	delete(results, "nearby_places")
	delete(results, "budget_estimate")

	_, err := BuildSummary(context.Background(), results)
	if !errors.Is(err, types.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestBuildSummary_DecodedJSONValues(t *testing.T) {
	// Results replayed from a transcript arrive as generic JSON values
	// rather than concrete structs.
	results := map[string]any{
		"feasible_slots": []any{
			map[string]any{"date": "2025-07-10", "start_time": "09:00", "end_time": "11:00"},
		},
		"nearby_places": []any{
			map[string]any{"name": "Cafe Alpha", "latitude": "19.18", "longitude": "72.84"},
		},
		"budget_estimate": map[string]any{
			"total_budget": float64(1200), "per_person_cost": float64(600), "currency": "INR",
			"number_of_people": float64(2), "duration_hours": float64(2),
		},
	}

	summary, err := BuildSummary(context.Background(), results)
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	if summary.Venues[0].Name != "Cafe Alpha" {
		t.Errorf("venue = %+v", summary.Venues[0])
	}
	if summary.Budget.TotalBudget != 1200 {
		t.Errorf("budget = %v", summary.Budget.TotalBudget)
	}
}

func TestBuildSummary_RevisedHeadcountRepricesVenues(t *testing.T) {
	results := completeResults()
	// Budget was estimated for 4, but the headcount was later revised.
	results["number_of_people"] = float64(6)

	summary, err := BuildSummary(context.Background(), results)
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	for _, vb := range summary.VenueBudgets {
		if vb.Estimate.TotalBudget != 3600 {
			t.Errorf("venue %s budget = %v, want repriced 3600", vb.Venue, vb.Estimate.TotalBudget)
		}
	}
}
