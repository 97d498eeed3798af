// Package nlu extracts structured event requests from natural language.
package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eventpilot/eventpilot/internal/llm"
	"github.com/eventpilot/eventpilot/internal/types"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Generator is the reasoning-service surface the parser needs.
type Generator interface {
	Chat(ctx context.Context, history []types.Message) (string, error)
}

// Parser turns free text into a validated EventRequest.
type Parser struct {
	llm      Generator
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

// NewParser creates a parser backed by the given reasoning service.
func NewParser(g Generator, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		llm:      g,
		validate: validator.New(),
		now:      time.Now,
		logger:   logger,
	}
}

const extractionPrompt = `You are an event planner assistant. Today's date is %s.

Extract from the user input:
- event_name
- duration_hours (integer)
- start_date (convert relative to absolute date in YYYY-MM-DD)
- end_date (same as start unless otherwise specified)
- location
- brand_name (only if a specific brand like McDonald's or Starbucks is named)
- query_type (bar, cafe, restaurant, pub, club etc. Infer from input. Default to "restaurant".)
- number_of_people (if not mentioned, assume 2)

Return only a valid JSON object with exactly those keys and no other text.

User input: %s`

// Parse extracts an EventRequest from userInput. Missing optional fields
// get defaults (2 people, "restaurant", end date = start date) before
// validation runs.
func (p *Parser) Parse(ctx context.Context, userInput string) (*types.EventRequest, error) {
	input, err := SanitizeInput(userInput)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidRequest, err)
	}

	prompt := fmt.Sprintf(extractionPrompt, p.now().Format("2006-01-02"), input)
	raw, err := p.llm.Chat(ctx, []types.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("intent extraction: %w", err)
	}

	parsed, ok := llm.ExtractJSON(raw)
	if !ok {
		p.logger.Warn("no JSON object in extraction output",
			zap.String("raw", truncate(raw, 200)))
		return nil, fmt.Errorf("%w: no JSON object in model output", types.ErrParseFailure)
	}

	data, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParseFailure, err)
	}
	var req types.EventRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParseFailure, err)
	}

	applyDefaults(&req)

	if err := p.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidRequest, err)
	}
	if req.StartDate > req.EndDate {
		return nil, fmt.Errorf("%w: start_date %s after end_date %s",
			types.ErrInvalidRequest, req.StartDate, req.EndDate)
	}

	p.logger.Info("parsed event request",
		zap.String("event", req.EventName),
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate),
		zap.Int("people", req.NumberOfPeople))

	return &req, nil
}

func applyDefaults(req *types.EventRequest) {
	if req.EndDate == "" {
		req.EndDate = req.StartDate
	}
	if req.NumberOfPeople == 0 {
		req.NumberOfPeople = 2
	}
	if req.QueryType == "" {
		req.QueryType = "restaurant"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
