package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/eventpilot/eventpilot/internal/agent"
	"github.com/eventpilot/eventpilot/internal/types"
)

var (
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
)

// printEvent renders session progress in one-shot mode.
func printEvent(e types.SessionEvent) {
	switch e.Phase {
	case types.PhaseToolCall:
		if e.ToolCall != nil {
			fmt.Printf("%s %s\n", stepStyle.Render("->"), e.ToolCall.Tool)
		}
	case types.PhaseResponding:
		if e.ToolResult != nil && e.ToolResult.Success {
			fmt.Println(dimStyle.Render(fmt.Sprintf("   done in %s", e.ToolResult.Duration)))
		}
		if e.Message != "" {
			fmt.Printf("%s %s\n", stepStyle.Render("?"), e.Message)
		}
	}
}

// printOutcome renders the final session outcome.
func printOutcome(outcome *agent.Outcome) {
	fmt.Println()
	if outcome.Result != "" {
		fmt.Println(successStyle.Render(outcome.Result))
	}

	if outcome.Summary != nil {
		printSummary(outcome.Summary)
		return
	}
	if errors.Is(outcome.SummaryErr, types.ErrInsufficientData) {
		fmt.Println(warnStyle.Render(fmt.Sprintf("No structured plan: %v", outcome.SummaryErr)))
	}
}

// printSummary renders a structured plan.
func printSummary(s *types.PlanSummary) {
	fmt.Println()
	fmt.Println(successStyle.Render("Event Plan"))

	if s.EventName != "" {
		printField("Event", s.EventName)
	}
	if s.SelectedSlot != nil {
		printField("When", fmt.Sprintf("%s  %s - %s",
			s.SelectedSlot.Date, s.SelectedSlot.StartTime, s.SelectedSlot.EndTime))
	}
	printField("Slots considered", fmt.Sprintf("%d", len(s.Slots)))
	printField("Budget", fmt.Sprintf("%.2f %s (%.2f per person)",
		s.Budget.TotalBudget, s.Budget.Currency, s.Budget.PerPersonCost))

	if len(s.Venues) > 0 {
		fmt.Println(labelStyle.Render("Venues:"))
		for i, venue := range s.Venues {
			line := fmt.Sprintf("  %d. %s", i+1, venue.Name)
			if i < len(s.VenueBudgets) && s.VenueBudgets[i].Error == "" {
				line += dimStyle.Render(fmt.Sprintf("  ~%.2f %s",
					s.VenueBudgets[i].Estimate.TotalBudget, s.VenueBudgets[i].Estimate.Currency))
			}
			fmt.Println(valueStyle.Render(line))
		}
	}
}

func printField(label, value string) {
	fmt.Printf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}
