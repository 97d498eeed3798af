// Package tools provides the tool framework the planning session
// dispatches through.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/eventpilot/eventpilot/internal/types"
)

// Tool defines the interface all planner tools implement.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description for the
	// reasoning service's planning prompt.
	Description() string

	// Parameters returns the parameter schema for validation.
	Parameters() []Parameter

	// Execute runs the tool. The returned mapping carries the tool's
	// well-known top-level result key(s).
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Parameter defines a tool parameter with validation rules.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "int", "float", "list"
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

// Registry maps tool names to tools. It is constructed explicitly and
// handed to each session, never shared process-wide.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = tool
	return nil
}

// MustRegister adds a tool to the registry, panicking on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info contains metadata about a tool for display and prompting.
type Info struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Infos returns metadata for all registered tools, sorted by name.
func (r *Registry) Infos() []Info {
	infos := make([]Info, 0, len(r.tools))
	for _, name := range r.List() {
		tool := r.tools[name]
		infos = append(infos, Info{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return infos
}

// Executor dispatches tool calls with argument validation and coercion.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute looks up and runs a tool. An absent tool yields
// *types.UnknownToolError; a fault during execution is wrapped in
// *types.ToolExecutionError carrying the tool name and raw arguments.
func (e *Executor) Execute(ctx context.Context, toolName string, args map[string]any) (map[string]any, error) {
	tool, exists := e.registry.Get(toolName)
	if !exists {
		return nil, &types.UnknownToolError{Tool: toolName}
	}

	coerced, err := coerceArgs(tool, args)
	if err != nil {
		return nil, &types.ToolExecutionError{Tool: toolName, Args: args, Err: err}
	}

	output, err := tool.Execute(ctx, coerced)
	if err != nil {
		return nil, &types.ToolExecutionError{Tool: toolName, Args: args, Err: err}
	}
	return output, nil
}

// coerceArgs checks required parameters, applies defaults, and coerces
// values to their declared types. JSON decoding hands every number over
// as float64, so int parameters need explicit conversion.
func coerceArgs(tool Tool, args map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(args))
	for k, v := range args {
		coerced[k] = v
	}

	for _, def := range tool.Parameters() {
		value, exists := coerced[def.Name]
		if !exists || value == nil {
			if def.Required {
				return nil, fmt.Errorf("missing required parameter: %s", def.Name)
			}
			if def.Default != nil {
				coerced[def.Name] = def.Default
			}
			continue
		}

		converted, err := coerceValue(value, def.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", def.Name, err)
		}
		coerced[def.Name] = converted
	}
	return coerced, nil
}

func coerceValue(value any, paramType string) (any, error) {
	switch paramType {
	case "string":
		switch v := value.(type) {
		case string:
			return v, nil
		default:
			return fmt.Sprintf("%v", v), nil
		}
	case "int":
		switch v := value.(type) {
		case int:
			return v, nil
		case float64:
			return int(v), nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("expected int, got %q", v)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("expected int, got %T", value)
		}
	case "float":
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("expected float, got %q", v)
			}
			return f, nil
		default:
			return nil, fmt.Errorf("expected float, got %T", value)
		}
	case "list":
		switch v := value.(type) {
		case []any:
			return v, nil
		default:
			return nil, fmt.Errorf("expected list, got %T", value)
		}
	default:
		return value, nil
	}
}
