package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/eventpilot/eventpilot/internal/llm"
	"github.com/eventpilot/eventpilot/internal/schedule"
	"github.com/eventpilot/eventpilot/internal/tools"
	"github.com/eventpilot/eventpilot/internal/types"
)

type chatStep struct {
	reply string
	err   error
}

// scriptedReasoner replays a fixed script and records every history it
// was asked with.
type scriptedReasoner struct {
	steps     []chatStep
	histories [][]types.Message
}

func (r *scriptedReasoner) Chat(ctx context.Context, history []types.Message) (string, error) {
	r.histories = append(r.histories, append([]types.Message(nil), history...))
	if len(r.histories) > len(r.steps) {
		return "", fmt.Errorf("script exhausted after %d calls", len(r.steps))
	}
	step := r.steps[len(r.histories)-1]
	return step.reply, step.err
}

type fixedParser struct {
	req *types.EventRequest
	err error
}

func (p *fixedParser) Parse(ctx context.Context, userInput string) (*types.EventRequest, error) {
	return p.req, p.err
}

type fixedPlaces struct {
	found []types.Place
	err   error
}

func (p *fixedPlaces) FindPlaces(ctx context.Context, queryType, brand, region string) ([]types.Place, error) {
	return p.found, p.err
}

func testRegistry() *tools.Registry {
	registry := tools.NewRegistry()
	tools.RegisterPlannerTools(registry, tools.Deps{
		Parser: &fixedParser{req: &types.EventRequest{
			EventName:      "team lunch",
			DurationHours:  2,
			StartDate:      "2025-07-10",
			EndDate:        "2025-07-10",
			Location:       "Malad",
			QueryType:      "restaurant",
			NumberOfPeople: 4,
		}},
		Places: &fixedPlaces{found: []types.Place{
			{Name: "Cafe Alpha", Latitude: "19.18", Longitude: "72.84"},
			{Name: "Cafe Beta", Latitude: "19.19", Longitude: "72.85"},
		}},
		Window: schedule.DefaultWindow(),
	})
	return registry
}

func newTestSession(t *testing.T, reasoner Reasoner, opts ...func(*Config)) *Session {
	t.Helper()
	cfg := Config{
		Registry:      testRegistry(),
		Reasoner:      reasoner,
		RetryInterval: time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	session, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session
}

func TestSession_FullPlanningRun(t *testing.T) {
	reasoner := &scriptedReasoner{steps: []chatStep{
		{reply: `{"tool": "nlu_tool", "args": {"user_input": "plan a team lunch"}}`},
		{reply: `{"tool": "slot_generator_tool", "args": {"start_date": "2025-07-10", "duration_hours": 2}}`},
		{reply: `{"tool": "location_finder_tool", "args": {"location": "Malad"}}`},
		{reply: `{"tool": "budget_estimator_tool", "args": {"number_of_people": 4, "duration_hours": 2, "location": "Malad"}}`},
		{reply: `{"tool": "finish", "args": {"result": "All set for the team lunch."}}`},
	}}
	session := newTestSession(t, reasoner)

	outcome, err := session.Run(context.Background(), "plan a team lunch in malad for 4")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Result != "All set for the team lunch." {
		t.Errorf("result = %q", outcome.Result)
	}
	if outcome.SummaryErr != nil {
		t.Fatalf("summary error: %v", outcome.SummaryErr)
	}
	if outcome.Summary == nil {
		t.Fatal("expected a summary")
	}
	if len(outcome.Summary.Slots) != 4 {
		t.Errorf("slots = %d, want 4", len(outcome.Summary.Slots))
	}
	if len(outcome.Summary.Venues) != 2 {
		t.Errorf("venues = %d, want 2", len(outcome.Summary.Venues))
	}
	if outcome.Summary.Budget.TotalBudget != 2400 {
		t.Errorf("budget = %v, want 2400", outcome.Summary.Budget.TotalBudget)
	}
	if len(outcome.Summary.VenueBudgets) != 2 {
		t.Errorf("venue budgets = %d, want 2", len(outcome.Summary.VenueBudgets))
	}
}

func TestSession_FinishTerminatesImmediately(t *testing.T) {
	reasoner := &scriptedReasoner{steps: []chatStep{
		{reply: `{"tool": "finish", "args": {"result": "nothing to do"}}`},
	}}
	session := newTestSession(t, reasoner)

	outcome, err := session.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Result != "nothing to do" {
		t.Errorf("result = %q", outcome.Result)
	}
	if len(reasoner.histories) != 1 {
		t.Errorf("chat calls after finish: %d, want 1", len(reasoner.histories))
	}
	// No tools ran, so a structured plan cannot exist.
	if !errors.Is(outcome.SummaryErr, types.ErrInsufficientData) {
		t.Errorf("summary err = %v, want ErrInsufficientData", outcome.SummaryErr)
	}
	if outcome.Summary != nil {
		t.Error("expected nil summary")
	}
}

func TestSession_UnknownToolTerminates(t *testing.T) {
	reasoner := &scriptedReasoner{steps: []chatStep{
		{reply: `{"tool": "weather_tool", "args": {}}`},
	}}
	session := newTestSession(t, reasoner)

	_, err := session.Run(context.Background(), "plan something")

	var unknown *types.UnknownToolError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownToolError, got %v", err)
	}
	if unknown.Tool != "weather_tool" {
		t.Errorf("tool = %q", unknown.Tool)
	}
	if len(reasoner.histories) != 1 {
		t.Errorf("loop continued after unknown tool: %d calls", len(reasoner.histories))
	}
}

func TestSession_ToolFaultTerminates(t *testing.T) {
	reasoner := &scriptedReasoner{steps: []chatStep{
		// Missing the required start_date.
		{reply: `{"tool": "slot_generator_tool", "args": {}}`},
	}}
	session := newTestSession(t, reasoner)

	_, err := session.Run(context.Background(), "plan something")

	var execErr *types.ToolExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ToolExecutionError, got %v", err)
	}
	if execErr.Tool != "slot_generator_tool" {
		t.Errorf("tool = %q", execErr.Tool)
	}
}

func TestSession_RateLimitRetriesSameHistory(t *testing.T) {
	reasoner := &scriptedReasoner{steps: []chatStep{
		{err: &llm.RateLimitError{Err: errors.New("429")}},
		{reply: `{"tool": "finish", "args": {"result": "done"}}`},
	}}
	session := newTestSession(t, reasoner)

	outcome, err := session.Run(context.Background(), "plan something")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Result != "done" {
		t.Errorf("result = %q", outcome.Result)
	}
	if len(reasoner.histories) != 2 {
		t.Fatalf("chat calls = %d, want 2", len(reasoner.histories))
	}

	// The retry resubmits the identical pending request.
	first, second := reasoner.histories[0], reasoner.histories[1]
	if len(first) != len(second) {
		t.Fatalf("history lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Role != second[i].Role || first[i].Content != second[i].Content {
			t.Errorf("history diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSession_RateLimitRetriesExhausted(t *testing.T) {
	rl := &llm.RateLimitError{Err: errors.New("429")}
	reasoner := &scriptedReasoner{steps: []chatStep{
		{err: rl}, {err: rl}, {err: rl},
	}}
	session := newTestSession(t, reasoner, func(cfg *Config) {
		cfg.MaxRetries = 2
	})

	_, err := session.Run(context.Background(), "plan something")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var rateLimited *llm.RateLimitError
	if !errors.As(err, &rateLimited) {
		t.Errorf("cause lost: %v", err)
	}
	if len(reasoner.histories) != 3 {
		t.Errorf("chat calls = %d, want 3 (initial + 2 retries)", len(reasoner.histories))
	}
}

func TestSession_ConversationalWithoutPrompter(t *testing.T) {
	reasoner := &scriptedReasoner{steps: []chatStep{
		{reply: "Which city should I search in?"},
	}}
	session := newTestSession(t, reasoner)

	outcome, err := session.Run(context.Background(), "plan a dinner")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Result != "Which city should I search in?" {
		t.Errorf("result = %q", outcome.Result)
	}
}

func TestSession_ConversationalWithPrompter(t *testing.T) {
	reasoner := &scriptedReasoner{steps: []chatStep{
		{reply: "Which city should I search in?"},
		{reply: `{"tool": "finish", "args": {"result": "planned in Mumbai"}}`},
	}}
	session := newTestSession(t, reasoner, func(cfg *Config) {
		cfg.Prompter = func(ctx context.Context) (string, error) {
			return "Mumbai", nil
		}
	})

	outcome, err := session.Run(context.Background(), "plan a dinner")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Result != "planned in Mumbai" {
		t.Errorf("result = %q", outcome.Result)
	}

	// The human reply joins the history for the next turn.
	second := reasoner.histories[1]
	last := second[len(second)-1]
	if last.Role != "user" || last.Content != "Mumbai" {
		t.Errorf("last message = %+v, want the user reply", last)
	}
}

func TestSession_CancellationBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := newTestSession(t, &scriptedReasoner{})
	_, err := session.Run(ctx, "plan something")
	if !errors.Is(err, types.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

// reasonerFunc adapts a function to the Reasoner interface.
type reasonerFunc func(ctx context.Context, history []types.Message) (string, error)

func (f reasonerFunc) Chat(ctx context.Context, history []types.Message) (string, error) {
	return f(ctx, history)
}

func TestSession_SummaryFanOutObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scripted := &scriptedReasoner{steps: []chatStep{
		{reply: `{"tool": "slot_generator_tool", "args": {"start_date": "2025-07-10", "duration_hours": 2}}`},
		{reply: `{"tool": "location_finder_tool", "args": {"location": "Malad"}}`},
		{reply: `{"tool": "budget_estimator_tool", "args": {"number_of_people": 4, "duration_hours": 2, "location": "Malad"}}`},
		{reply: `{"tool": "finish", "args": {"result": "done"}}`},
	}}
	// Cancellation lands while the finish turn is being processed, so
	// the summary's per-venue fan-out runs under a cancelled context.
	reasoner := reasonerFunc(func(c context.Context, h []types.Message) (string, error) {
		reply, err := scripted.Chat(c, h)
		if strings.Contains(reply, `"finish"`) {
			cancel()
		}
		return reply, err
	})
	session := newTestSession(t, reasoner)

	outcome, err := session.Run(ctx, "plan something")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Summary == nil {
		t.Fatalf("expected a summary, got summary err %v", outcome.SummaryErr)
	}
	if len(outcome.Summary.VenueBudgets) != 2 {
		t.Fatalf("venue budgets = %d, want 2", len(outcome.Summary.VenueBudgets))
	}
	for _, vb := range outcome.Summary.VenueBudgets {
		if vb.Error == "" {
			t.Errorf("venue %s: expected a cancellation error, got an estimate", vb.Venue)
		}
	}
}

func TestSession_ResultsAccumulateLastWriteWins(t *testing.T) {
	reasoner := &scriptedReasoner{steps: []chatStep{
		{reply: `{"tool": "budget_estimator_tool", "args": {"number_of_people": 2, "duration_hours": 2, "location": "Malad"}}`},
		{reply: `{"tool": "budget_estimator_tool", "args": {"number_of_people": 6, "duration_hours": 2, "location": "Malad"}}`},
		{reply: `{"tool": "finish", "args": {"result": "done"}}`},
	}}
	session := newTestSession(t, reasoner)

	_, err := session.Run(context.Background(), "plan something")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	estimate, ok := session.Results()["budget_estimate"].(types.BudgetEstimate)
	if !ok {
		t.Fatalf("budget_estimate is %T", session.Results()["budget_estimate"])
	}
	if estimate.TotalBudget != 3600 {
		t.Errorf("total = %v, want the revised 3600", estimate.TotalBudget)
	}
}
