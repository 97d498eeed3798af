// Planner tools: intent parsing, slot generation/selection, venue
// lookup, and budget estimation.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eventpilot/eventpilot/internal/budget"
	"github.com/eventpilot/eventpilot/internal/schedule"
	"github.com/eventpilot/eventpilot/internal/types"
)

// IntentParser is the NLU surface the parse tool needs.
type IntentParser interface {
	Parse(ctx context.Context, userInput string) (*types.EventRequest, error)
}

// PlaceFinder is the venue-search surface the location tool needs.
type PlaceFinder interface {
	FindPlaces(ctx context.Context, queryType, brand, region string) ([]types.Place, error)
}

// Deps carries the collaborators the planner tools are built over.
type Deps struct {
	Parser IntentParser
	Places PlaceFinder
	Window schedule.Window
}

// RegisterPlannerTools registers the full planner tool set on r.
func RegisterPlannerTools(r *Registry, deps Deps) {
	r.MustRegister(&ParseEventTool{parser: deps.Parser})
	r.MustRegister(&SlotGeneratorTool{window: deps.Window})
	r.MustRegister(&SlotSelectionTool{})
	r.MustRegister(&LocationFinderTool{places: deps.Places})
	r.MustRegister(&BudgetEstimatorTool{})
}

// ============================================================================
// Intent parsing
// ============================================================================

// ParseEventTool extracts structured event details from free text.
type ParseEventTool struct {
	parser IntentParser
}

func (t *ParseEventTool) Name() string { return "nlu_tool" }

func (t *ParseEventTool) Description() string {
	return "Parse the user's natural language input to extract event details: " +
		"event name, duration, date range, location, brand name, query type, and headcount."
}

func (t *ParseEventTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "user_input", Type: "string", Description: "The user's event planning request", Required: true},
	}
}

func (t *ParseEventTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	req, err := t.parser.Parse(ctx, args["user_input"].(string))
	if err != nil {
		return nil, err
	}

	// Flatten the request so each field lands as its own accumulated
	// result key, mirroring how later tools consume them.
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Slot generation
// ============================================================================

// SlotGeneratorTool enumerates feasible time slots within working hours.
type SlotGeneratorTool struct {
	window schedule.Window
}

func (t *SlotGeneratorTool) Name() string { return "slot_generator_tool" }

func (t *SlotGeneratorTool) Description() string {
	return "Generate feasible time slots for an event between start_date and end_date, " +
		"tiling the configured working hours into back-to-back windows."
}

func (t *SlotGeneratorTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "start_date", Type: "string", Description: "Start date in YYYY-MM-DD format", Required: true},
		{Name: "end_date", Type: "string", Description: "End date in YYYY-MM-DD format; defaults to start_date", Required: false},
		{Name: "duration_hours", Type: "int", Description: "Duration of the event in hours", Required: false, Default: 1},
	}
}

func (t *SlotGeneratorTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	startDate := args["start_date"].(string)
	endDate, _ := args["end_date"].(string)
	if endDate == "" {
		endDate = startDate
	}
	duration := args["duration_hours"].(int)

	// Range validation happens here, never inside the engine.
	if err := schedule.ValidateRange(startDate, endDate, duration); err != nil {
		return nil, err
	}

	slots, err := schedule.GenerateFeasibleSlots(startDate, endDate, duration, t.window)
	if err != nil {
		return nil, err
	}
	return map[string]any{"feasible_slots": slots}, nil
}

// ============================================================================
// Slot selection
// ============================================================================

// SlotSelectionTool picks the best slot for the event type.
type SlotSelectionTool struct{}

func (t *SlotSelectionTool) Name() string { return "slot_selection_tool" }

func (t *SlotSelectionTool) Description() string {
	return "Select the most suitable time slot for the event. Date events prefer evenings " +
		"from 17:00, lunches 12:00-15:00, dinners after 19:00; otherwise the first slot wins."
}

func (t *SlotSelectionTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "event_name", Type: "string", Description: "Event name, used to infer the preferred time of day", Required: true},
		{Name: "feasible_slots", Type: "list", Description: "Candidate slots from slot_generator_tool", Required: true},
	}
}

func (t *SlotSelectionTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	slots, err := decodeSlots(args["feasible_slots"])
	if err != nil {
		return nil, err
	}

	selected, err := schedule.SelectSlot(args["event_name"].(string), slots)
	if err != nil {
		return nil, err
	}
	return map[string]any{"selected_slot": selected}, nil
}

// decodeSlots converts the loosely-typed slot list the reasoning service
// echoes back into concrete slots.
func decodeSlots(raw any) ([]types.Slot, error) {
	if slots, ok := raw.([]types.Slot); ok {
		return slots, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid feasible_slots: %w", err)
	}
	var slots []types.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("invalid feasible_slots: %w", err)
	}
	return slots, nil
}

// ============================================================================
// Venue lookup
// ============================================================================

// LocationFinderTool searches for venues near the requested region.
type LocationFinderTool struct {
	places PlaceFinder
}

func (t *LocationFinderTool) Name() string { return "location_finder_tool" }

func (t *LocationFinderTool) Description() string {
	return "Find nearby places for the event based on location, query type, and optional brand name."
}

func (t *LocationFinderTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "location", Type: "string", Description: "The region or locality to search within", Required: true},
		{Name: "query_type", Type: "string", Description: "The type of place (e.g. restaurant, cafe)", Required: false, Default: "restaurant"},
		{Name: "brand_name", Type: "string", Description: "Specific brand to prioritise (e.g. McDonald's)", Required: false},
	}
}

func (t *LocationFinderTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	brand, _ := args["brand_name"].(string)
	found, err := t.places.FindPlaces(ctx, args["query_type"].(string), brand, args["location"].(string))
	if err != nil {
		return nil, err
	}
	return map[string]any{"nearby_places": found}, nil
}

// ============================================================================
// Budget estimation
// ============================================================================

// BudgetEstimatorTool projects event costs from headcount and location.
type BudgetEstimatorTool struct{}

func (t *BudgetEstimatorTool) Name() string { return "budget_estimator_tool" }

func (t *BudgetEstimatorTool) Description() string {
	return "Estimate the event budget from the number of people, duration, and location."
}

func (t *BudgetEstimatorTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "number_of_people", Type: "int", Description: "Number of guests attending", Required: false, Default: 1},
		{Name: "duration_hours", Type: "int", Description: "Duration of the event in hours", Required: false, Default: 2},
		{Name: "location", Type: "string", Description: "Location of the event for cost reference", Required: false, Default: "unknown"},
	}
}

func (t *BudgetEstimatorTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	estimate := budget.Estimate(
		args["number_of_people"].(int),
		args["duration_hours"].(int),
		args["location"].(string),
	)
	return map[string]any{"budget_estimate": estimate}, nil
}
