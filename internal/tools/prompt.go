package tools

import (
	"fmt"
	"strings"
)

// PlannerPrompt builds the system message for the planning session: the
// tool catalogue plus the single-JSON-object action contract, including
// the terminal "finish" action.
func (r *Registry) PlannerPrompt() string {
	var b strings.Builder

	b.WriteString("You are an event planning agent.\n")
	b.WriteString("Always output a single valid JSON object with double quotes and no extra text, explanation, or markdown.\n\n")

	b.WriteString("Available tools:\n\n")
	for _, info := range r.Infos() {
		b.WriteString(fmt.Sprintf("### %s\n%s\n", info.Name, info.Description))
		if len(info.Parameters) > 0 {
			b.WriteString("Parameters:\n")
			for _, p := range info.Parameters {
				req := "optional"
				if p.Required {
					req = "required"
				}
				b.WriteString(fmt.Sprintf("  - %s (%s, %s): %s\n", p.Name, p.Type, req, p.Description))
				if p.Default != nil {
					b.WriteString(fmt.Sprintf("    Default: %v\n", p.Default))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(`To use a tool, respond with ONLY a JSON object in this exact format:
{"tool": "tool_name", "args": {"param1": "value1"}}

When the plan is complete, respond with:
{"tool": "finish", "args": {"result": "<final_plan_here>"}}

Important:
- Use one tool at a time
- After receiving a tool result, decide the next tool from the accumulated results
- If you need clarification from the user, respond with plain text instead of JSON`)

	return b.String()
}
