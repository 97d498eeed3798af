// Package types defines shared data structures for the event planner.
package types

import (
	"strconv"
	"strings"
	"time"
)

// Slot is a contiguous candidate time window for holding an event.
// It uses the planner wire format: Date is "YYYY-MM-DD", StartTime and
// EndTime are "HH:00". A slot is identified by the triple itself.
type Slot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// StartHour returns the hour component of StartTime, or -1 if malformed.
func (s Slot) StartHour() int {
	h, _, ok := strings.Cut(s.StartTime, ":")
	if !ok {
		return -1
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return -1
	}
	return hour
}

// EventRequest is the parsed intent extracted from the user's free text.
// It is produced once by the NLU step and treated as read-only afterwards.
type EventRequest struct {
	EventName      string `json:"event_name" validate:"required"`
	DurationHours  int    `json:"duration_hours" validate:"gt=0"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Location       string `json:"location" validate:"required"`
	BrandName      string `json:"brand_name,omitempty"`
	QueryType      string `json:"query_type,omitempty"`
	NumberOfPeople int    `json:"number_of_people" validate:"gte=1"`
}

// Place is a venue candidate returned by the place finder.
// Latitude and longitude stay strings, matching the search API wire format.
type Place struct {
	Name      string `json:"name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Type      string `json:"type"`
	Icon      string `json:"icon,omitempty"`
}

// BudgetEstimate holds the cost projection for an event. The inputs are
// echoed back so downstream consumers can reprice without re-asking.
type BudgetEstimate struct {
	TotalBudget    float64 `json:"total_budget"`
	PerPersonCost  float64 `json:"per_person_cost"`
	Currency       string  `json:"currency"`
	NumberOfPeople int     `json:"number_of_people"`
	DurationHours  int     `json:"duration_hours"`
	Location       string  `json:"location,omitempty"`
}

// VenueBudget pairs one venue with its independent budget estimate.
type VenueBudget struct {
	Venue    string         `json:"venue"`
	Estimate BudgetEstimate `json:"estimate"`
	Error    string         `json:"error,omitempty"`
}

// ToolCall is the structured action the reasoning service embeds in its
// reply: {"tool": "...", "args": {...}}. The special tool name "finish"
// carries the final plan in args["result"].
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// ToolResult holds the outcome of one tool dispatch.
type ToolResult struct {
	Tool     string         `json:"tool"`
	Output   map[string]any `json:"output,omitempty"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration,omitempty"`
}

// Message is one entry in the conversation history.
type Message struct {
	Role      string    `json:"role"` // "system", "user", "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// PlanSummary is the structured final plan assembled after a session
// terminates successfully.
type PlanSummary struct {
	EventName    string         `json:"event_name,omitempty"`
	SelectedSlot *Slot          `json:"selected_slot,omitempty"`
	Slots        []Slot         `json:"feasible_slots"`
	Venues       []Place        `json:"nearby_places"`
	Budget       BudgetEstimate `json:"budget_estimate"`
	VenueBudgets []VenueBudget  `json:"venue_budgets,omitempty"`
}

// SessionPhase represents the current state of session processing.
type SessionPhase int

const (
	PhaseIdle SessionPhase = iota
	PhaseThinking
	PhaseToolCall
	PhaseToolExecuting
	PhaseAwaitingInput
	PhaseResponding
	PhaseDone
	PhaseError
)

// String returns a human-readable phase name.
func (p SessionPhase) String() string {
	names := [...]string{
		"Idle",
		"Thinking",
		"Planning tool call",
		"Executing tool",
		"Waiting for input",
		"Responding",
		"Done",
		"Error",
	}
	if int(p) < len(names) {
		return names[p]
	}
	return "Unknown"
}

// SessionEvent is emitted while a session runs to update the UI.
type SessionEvent struct {
	Phase      SessionPhase
	Message    string
	ToolCall   *ToolCall
	ToolResult *ToolResult
	Summary    *PlanSummary
	Err        error
}
