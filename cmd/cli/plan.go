package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eventpilot/eventpilot/internal/agent"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [request]",
	Short: "Plan an event without the agent loop",
	Long: `Run the planning steps in a fixed order: parse the request, generate
time slots, pick one, find venues, and estimate the budget.

Unlike the default agent mode, the reasoning service is only used to
parse the request. Useful for scripting and predictable output.

Example:
  eventpilot plan "Team lunch in Malad tomorrow for 6 people"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runPlan(args)
	},
}

func runPlan(args []string) {
	p, err := buildPlanner()
	if err != nil {
		printError("Failed to initialize planner", err)
		os.Exit(1)
	}
	defer p.logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := agent.NewPipeline(p.parser, p.finder, p.window, p.logger)
	summary, err := pipeline.Run(ctx, strings.Join(args, " "))
	if err != nil {
		printError("Planning failed", err)
		os.Exit(1)
	}

	printSummary(summary)
}
