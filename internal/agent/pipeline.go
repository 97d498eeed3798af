package agent

import (
	"context"
	"fmt"

	"github.com/eventpilot/eventpilot/internal/budget"
	"github.com/eventpilot/eventpilot/internal/schedule"
	"github.com/eventpilot/eventpilot/internal/tools"
	"github.com/eventpilot/eventpilot/internal/types"
	"go.uber.org/zap"
)

// Pipeline runs the planning steps in a fixed order without the
// reasoning service choosing them: parse, generate slots, select one,
// find venues, estimate budget. Useful for scripted runs and as a
// fallback when no reasoning service is configured.
type Pipeline struct {
	parser tools.IntentParser
	places tools.PlaceFinder
	window schedule.Window
	logger *zap.Logger
}

// NewPipeline builds a fixed-order planner over the given collaborators.
func NewPipeline(parser tools.IntentParser, places tools.PlaceFinder, window schedule.Window, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{parser: parser, places: places, window: window, logger: logger}
}

// Run plans one event end to end. Venue lookup failures degrade the
// plan (no venues, no per-venue budgets) instead of aborting it;
// everything before it is mandatory.
func (p *Pipeline) Run(ctx context.Context, userInput string) (*types.PlanSummary, error) {
	req, err := p.parser.Parse(ctx, userInput)
	if err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	p.logger.Info("parsed request",
		zap.String("event", req.EventName),
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate))

	if err := schedule.ValidateRange(req.StartDate, req.EndDate, req.DurationHours); err != nil {
		return nil, err
	}
	slots, err := schedule.GenerateFeasibleSlots(req.StartDate, req.EndDate, req.DurationHours, p.window)
	if err != nil {
		return nil, fmt.Errorf("generate slots: %w", err)
	}

	selected, err := schedule.SelectSlot(req.EventName, slots)
	if err != nil {
		return nil, err
	}

	venues, err := p.places.FindPlaces(ctx, req.QueryType, req.BrandName, req.Location)
	if err != nil {
		p.logger.Warn("venue lookup failed, continuing without venues", zap.Error(err))
		venues = nil
	}

	estimate := budget.Estimate(req.NumberOfPeople, req.DurationHours, req.Location)

	return &types.PlanSummary{
		EventName:    req.EventName,
		SelectedSlot: &selected,
		Slots:        slots,
		Venues:       venues,
		Budget:       estimate,
		VenueBudgets: budget.EstimateForVenues(ctx, venues, req.NumberOfPeople, req.DurationHours, req.Location),
	}, nil
}
