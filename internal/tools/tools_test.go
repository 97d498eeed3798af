package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/eventpilot/eventpilot/internal/types"
)

// mockTool for testing the framework.
type mockTool struct {
	name        string
	description string
	params      []Parameter
	execFunc    func(ctx context.Context, args map[string]any) (map[string]any, error)
}

func (m *mockTool) Name() string            { return m.name }
func (m *mockTool) Description() string     { return m.description }
func (m *mockTool) Parameters() []Parameter { return m.params }
func (m *mockTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	if m.execFunc != nil {
		return m.execFunc(ctx, args)
	}
	return map[string]any{"ok": true}, nil
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	tool := &mockTool{name: "test-tool", description: "a test tool"}

	if err := registry.Register(tool); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := registry.Register(tool); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&mockTool{name: "test-tool"})

	found, ok := registry.Get("test-tool")
	if !ok {
		t.Fatal("expected to find tool")
	}
	if found.Name() != "test-tool" {
		t.Fatalf("expected 'test-tool', got %s", found.Name())
	}

	if _, ok := registry.Get("nonexistent"); ok {
		t.Fatal("expected not to find nonexistent tool")
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&mockTool{name: "zeta"})
	registry.MustRegister(&mockTool{name: "alpha"})

	names := registry.List()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}

func TestExecutor_UnknownTool(t *testing.T) {
	executor := NewExecutor(NewRegistry())

	_, err := executor.Execute(context.Background(), "nonexistent", nil)

	var unknown *types.UnknownToolError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownToolError, got %v", err)
	}
	if unknown.Tool != "nonexistent" {
		t.Errorf("tool = %q", unknown.Tool)
	}
}

func TestExecutor_MissingRequiredParam(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&mockTool{
		name:   "test",
		params: []Parameter{{Name: "needed", Type: "string", Required: true}},
	})
	executor := NewExecutor(registry)

	_, err := executor.Execute(context.Background(), "test", map[string]any{})

	var execErr *types.ToolExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ToolExecutionError, got %v", err)
	}
}

func TestExecutor_AppliesDefaults(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&mockTool{
		name:   "test",
		params: []Parameter{{Name: "count", Type: "int", Required: false, Default: 3}},
		execFunc: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"count": args["count"]}, nil
		},
	})
	executor := NewExecutor(registry)

	out, err := executor.Execute(context.Background(), "test", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["count"] != 3 {
		t.Errorf("count = %v, want default 3", out["count"])
	}
}

func TestExecutor_CoercesNumericArgs(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&mockTool{
		name:   "test",
		params: []Parameter{{Name: "hours", Type: "int", Required: true}},
		execFunc: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			hours, ok := args["hours"].(int)
			if !ok {
				return nil, fmt.Errorf("hours is %T, not int", args["hours"])
			}
			return map[string]any{"hours": hours}, nil
		},
	})
	executor := NewExecutor(registry)

	// JSON decoding produces float64; string digits also appear in
	// model output. Both must coerce.
	for _, raw := range []any{float64(2), "2"} {
		out, err := executor.Execute(context.Background(), "test", map[string]any{"hours": raw})
		if err != nil {
			t.Fatalf("coercion of %T failed: %v", raw, err)
		}
		if out["hours"] != 2 {
			t.Errorf("hours = %v, want 2", out["hours"])
		}
	}
}

func TestExecutor_WrapsExecutionFault(t *testing.T) {
	registry := NewRegistry()
	boom := errors.New("backend down")
	registry.MustRegister(&mockTool{
		name: "flaky",
		execFunc: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, boom
		},
	})
	executor := NewExecutor(registry)

	_, err := executor.Execute(context.Background(), "flaky", map[string]any{"x": 1})

	var execErr *types.ToolExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ToolExecutionError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("expected wrapped cause to survive")
	}
	if execErr.Tool != "flaky" || execErr.Args["x"] != 1 {
		t.Errorf("missing reproduction context: %+v", execErr)
	}
}

func TestPlannerPrompt(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&mockTool{
		name:        "slot_generator_tool",
		description: "Generate feasible slots.",
		params: []Parameter{
			{Name: "start_date", Type: "string", Description: "Start date", Required: true},
		},
	})

	prompt := registry.PlannerPrompt()

	for _, want := range []string{
		"slot_generator_tool",
		"start_date",
		`{"tool": "finish", "args": {"result": "<final_plan_here>"}}`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
