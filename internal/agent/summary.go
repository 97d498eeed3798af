package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eventpilot/eventpilot/internal/budget"
	"github.com/eventpilot/eventpilot/internal/types"
)

// summaryKeys are the accumulated-result keys a plan summary requires.
var summaryKeys = []string{"feasible_slots", "nearby_places", "budget_estimate"}

// BuildSummary assembles the structured plan from the accumulated tool
// results. When the required keys are missing the session reports an
// explicit insufficient-data outcome instead of a partial plan.
func BuildSummary(ctx context.Context, results map[string]any) (*types.PlanSummary, error) {
	var missing []string
	for _, key := range summaryKeys {
		if _, ok := results[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s",
			types.ErrInsufficientData, strings.Join(missing, ", "))
	}

	summary := &types.PlanSummary{}
	if name, ok := results["event_name"].(string); ok {
		summary.EventName = name
	}
	if err := decodeResult(results["feasible_slots"], &summary.Slots); err != nil {
		return nil, fmt.Errorf("%w: feasible_slots: %v", types.ErrInsufficientData, err)
	}
	if err := decodeResult(results["nearby_places"], &summary.Venues); err != nil {
		return nil, fmt.Errorf("%w: nearby_places: %v", types.ErrInsufficientData, err)
	}
	if err := decodeResult(results["budget_estimate"], &summary.Budget); err != nil {
		return nil, fmt.Errorf("%w: budget_estimate: %v", types.ErrInsufficientData, err)
	}
	if raw, ok := results["selected_slot"]; ok {
		var slot types.Slot
		if err := decodeResult(raw, &slot); err == nil {
			summary.SelectedSlot = &slot
		}
	}

	// Per-venue budgets are computed at summary time with the final
	// headcount, so a mid-session headcount revision reprices every
	// venue consistently.
	people := resultInt(results, "number_of_people", summary.Budget.NumberOfPeople)
	duration := resultInt(results, "duration_hours", summary.Budget.DurationHours)
	location, _ := results["location"].(string)
	if location == "" {
		location = summary.Budget.Location
	}
	summary.VenueBudgets = budget.EstimateForVenues(ctx, summary.Venues, people, duration, location)

	return summary, nil
}

// decodeResult converts an accumulated result into dst. Values arrive
// either as concrete types from in-process tools or as decoded JSON
// from the transcript, so a marshal round-trip covers both.
func decodeResult(raw any, dst any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// resultInt reads an integer-valued result that may be an int, a JSON
// float64, or absent.
func resultInt(results map[string]any, key string, fallback int) int {
	switch v := results[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
