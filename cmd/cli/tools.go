package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/eventpilot/eventpilot/internal/schedule"
	"github.com/eventpilot/eventpilot/internal/tools"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available planning tools",
	Long: `List the tools the planning agent can call.

The agent picks these automatically while working through a request.
You can also reference them directly, e.g. "use the slot generator
for Aug 20 to Aug 22".

Examples:
  eventpilot tools           # List all tools
  eventpilot tools --verbose # Show parameter details`,
	Run: func(cmd *cobra.Command, args []string) {
		runTools()
	},
}

func runTools() {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2563EB")).
		Bold(true)

	toolStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF"))

	paramStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#06B6D4"))

	// The listing needs no live backends; nil collaborators are fine
	// because nothing gets executed.
	registry := tools.NewRegistry()
	tools.RegisterPlannerTools(registry, tools.Deps{Window: schedule.DefaultWindow()})

	fmt.Println(headerStyle.Render("Available Tools"))
	fmt.Println()

	for _, info := range registry.Infos() {
		fmt.Printf("  %s\n", toolStyle.Render(info.Name))
		fmt.Printf("    %s\n", descStyle.Render(info.Description))

		if verbose && len(info.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, p := range info.Parameters {
				req := ""
				if p.Required {
					req = " (required)"
				}
				fmt.Printf("      %s%s\n", paramStyle.Render(p.Name), req)
				if p.Description != "" {
					fmt.Printf("        %s\n", descStyle.Render(p.Description))
				}
			}
		}
		fmt.Println()
	}

	fmt.Println(descStyle.Render(fmt.Sprintf("  Total: %d tools available", len(registry.List()))))

	if !verbose {
		fmt.Println(descStyle.Render("  Use --verbose for parameter details"))
	}
}
