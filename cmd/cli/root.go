package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eventpilot/eventpilot/internal/agent"
	"github.com/eventpilot/eventpilot/internal/config"
	"github.com/eventpilot/eventpilot/internal/llm"
	"github.com/eventpilot/eventpilot/internal/nlu"
	"github.com/eventpilot/eventpilot/internal/places"
	"github.com/eventpilot/eventpilot/internal/schedule"
	"github.com/eventpilot/eventpilot/internal/tools"
	"github.com/eventpilot/eventpilot/internal/types"
	"github.com/eventpilot/eventpilot/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath  string
	verbose     bool
	interactive bool
)

var rootCmd = &cobra.Command{
	Use:   "eventpilot [request]",
	Short: "AI-powered event planning assistant",
	Long: `
███████╗██╗   ██╗███████╗███╗   ██╗████████╗██████╗ ██╗██╗      ██████╗ ████████╗
██╔════╝██║   ██║██╔════╝████╗  ██║╚══██╔══╝██╔══██╗██║██║     ██╔═══██╗╚══██╔══╝
█████╗  ██║   ██║█████╗  ██╔██╗ ██║   ██║   ██████╔╝██║██║     ██║   ██║   ██║
██╔══╝  ╚██╗ ██╔╝██╔══╝  ██║╚██╗██║   ██║   ██╔═══╝ ██║██║     ██║   ██║   ██║
███████╗ ╚████╔╝ ███████╗██║ ╚████║   ██║   ██║     ██║███████╗╚██████╔╝   ██║
╚══════╝  ╚═══╝  ╚══════╝╚═╝  ╚═══╝   ╚═╝   ╚═╝     ╚═╝╚══════╝ ╚═════╝    ╚═╝

  Plan events from plain language: dates, time slots, venues, and budgets.

Usage:
  eventpilot "Plan a team lunch in Malad tomorrow for 6 people"
  eventpilot --it`,

	Run: func(cmd *cobra.Command, args []string) {
		if interactive {
			runInteractive()
			return
		}
		if len(args) > 0 {
			runOneShot(args)
			return
		}
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&interactive, "it", false, "Start interactive mode")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}

// planner bundles everything one session needs.
type planner struct {
	cfg      config.Config
	registry *tools.Registry
	reasoner *llm.Client
	parser   *nlu.Parser
	finder   *places.Client
	window   schedule.Window
	logger   *zap.Logger
}

// buildPlanner wires the planner from configuration.
func buildPlanner() (*planner, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := createLogger()

	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("no LLM API key configured (set GROQ_API_KEY)")
	}

	reasoner := llm.NewClient(llm.Config{
		Endpoint:    cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})

	finder := places.NewClient(places.Config{
		BaseURL: cfg.Places.BaseURL,
		APIKey:  cfg.Places.APIKey,
		Limit:   cfg.Places.Limit,
	}, logger)

	parser := nlu.NewParser(reasoner, logger)
	window := schedule.Window{Start: cfg.Schedule.WorkStartHour, End: cfg.Schedule.WorkEndHour}

	registry := tools.NewRegistry()
	tools.RegisterPlannerTools(registry, tools.Deps{
		Parser: parser,
		Places: finder,
		Window: window,
	})

	return &planner{
		cfg:      cfg,
		registry: registry,
		reasoner: reasoner,
		parser:   parser,
		finder:   finder,
		window:   window,
		logger:   logger,
	}, nil
}

func (p *planner) sessionConfig() agent.Config {
	return agent.Config{
		Registry:      p.registry,
		Reasoner:      p.reasoner,
		Logger:        p.logger,
		MaxMessages:   p.cfg.Session.MaxMessages,
		MaxRetries:    p.cfg.Session.MaxRetries,
		RetryInterval: time.Duration(p.cfg.Session.RetryInterval) * time.Second,
	}
}

func runInteractive() {
	p, err := buildPlanner()
	if err != nil {
		printError("Failed to initialize planner", err)
		os.Exit(1)
	}
	defer p.logger.Sync()

	// Sessions live no longer than the program: quitting the TUI
	// cancels any in-flight session.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan types.SessionEvent, 16)
	replies := make(chan string, 1)

	sessionCfg := p.sessionConfig()
	sessionCfg.Prompter = func(ctx context.Context) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case reply := <-replies:
			return reply, nil
		}
	}

	model := ui.NewModel(ui.Options{
		StartSession: func(query string) tea.Cmd {
			go runSessionWorker(ctx, sessionCfg, events, query)
			return nil
		},
		SendReply: func(reply string) { replies <- reply },
		Events:    events,
		ToolList:  p.registry.List(),
	})

	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		printError("UI error", err)
		os.Exit(1)
	}
}

// runSessionWorker drives one planning session, reporting progress on
// events. Emission gives up when ctx is cancelled so the worker never
// blocks after the UI stops draining the channel.
func runSessionWorker(ctx context.Context, cfg agent.Config, events chan<- types.SessionEvent, query string) {
	emit := func(e types.SessionEvent) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}
	cfg.Events = emit

	session, err := agent.NewSession(cfg)
	if err != nil {
		emit(types.SessionEvent{Phase: types.PhaseError, Err: err})
		return
	}
	// Run reports its own errors through the events channel.
	session.Run(ctx, query)
}

func runOneShot(args []string) {
	p, err := buildPlanner()
	if err != nil {
		printError("Failed to initialize planner", err)
		os.Exit(1)
	}
	defer p.logger.Sync()

	query := strings.Join(args, " ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionCfg := p.sessionConfig()
	sessionCfg.Events = printEvent

	session, err := agent.NewSession(sessionCfg)
	if err != nil {
		printError("Failed to start session", err)
		os.Exit(1)
	}

	outcome, err := session.Run(ctx, query)
	if err != nil {
		printError("Planning failed", err)
		os.Exit(1)
	}

	printOutcome(outcome)
}

func createLogger() *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func printError(msg string, err error) {
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).
		Render(fmt.Sprintf("Error: %s: %v", msg, err)))
}
