package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/eventpilot/eventpilot/internal/schedule"
	"github.com/eventpilot/eventpilot/internal/types"
)

func TestPipeline_Run(t *testing.T) {
	parser := &fixedParser{req: &types.EventRequest{
		EventName:      "family lunch",
		DurationHours:  2,
		StartDate:      "2025-07-10",
		EndDate:        "2025-07-10",
		Location:       "Malad",
		QueryType:      "restaurant",
		NumberOfPeople: 4,
	}}
	places := &fixedPlaces{found: []types.Place{{Name: "Cafe Alpha"}}}
	pipeline := NewPipeline(parser, places, schedule.DefaultWindow(), nil)

	summary, err := pipeline.Run(context.Background(), "family lunch tomorrow in malad for 4")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Slots) != 4 {
		t.Errorf("slots = %d, want 4", len(summary.Slots))
	}
	if summary.SelectedSlot == nil || summary.SelectedSlot.StartTime != "13:00" {
		t.Errorf("selected = %+v, want the 13:00 lunch slot", summary.SelectedSlot)
	}
	if summary.Budget.TotalBudget != 2400 {
		t.Errorf("budget = %v, want 2400", summary.Budget.TotalBudget)
	}
	if len(summary.VenueBudgets) != 1 {
		t.Errorf("venue budgets = %d, want 1", len(summary.VenueBudgets))
	}
}

func TestPipeline_ParseFailureAborts(t *testing.T) {
	parser := &fixedParser{err: types.ErrParseFailure}
	pipeline := NewPipeline(parser, &fixedPlaces{}, schedule.DefaultWindow(), nil)

	_, err := pipeline.Run(context.Background(), "gibberish")
	if !errors.Is(err, types.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestPipeline_VenueLookupFailureDegrades(t *testing.T) {
	parser := &fixedParser{req: &types.EventRequest{
		EventName:      "standup",
		DurationHours:  1,
		StartDate:      "2025-07-10",
		EndDate:        "2025-07-10",
		Location:       "Malad",
		NumberOfPeople: 5,
	}}
	places := &fixedPlaces{err: errors.New("search service down")}
	pipeline := NewPipeline(parser, places, schedule.DefaultWindow(), nil)

	summary, err := pipeline.Run(context.Background(), "daily standup tomorrow")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Venues) != 0 || len(summary.VenueBudgets) != 0 {
		t.Errorf("expected a degraded plan without venues, got %+v", summary.Venues)
	}
	if summary.Budget.TotalBudget == 0 {
		t.Error("budget should still be estimated")
	}
}
