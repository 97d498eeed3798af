package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/eventpilot/eventpilot/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit configuration",
	Long:  "View current configuration or create a default config file.",
	Run:   runConfig,
}

var (
	configInit bool
	configShow bool
)

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	configCmd.Flags().BoolVar(&configShow, "show", true, "Show current configuration")
}

func runConfig(cmd *cobra.Command, args []string) {
	if configInit {
		initConfigFile()
		return
	}

	if configShow {
		showConfig()
	}
}

func initConfigFile() {
	if config.Exists() {
		path, _ := config.Path()
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).
			Render(path + " already exists. Use --show to view it."))
		return
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(""); err != nil {
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).
			Render(fmt.Sprintf("Failed to create config: %v", err)))
		os.Exit(1)
	}

	path, _ := config.Path()
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).
		Render("Created " + path + " with default settings."))
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Reasoning service endpoint and model")
	fmt.Println("  - Venue search endpoint and result limit")
	fmt.Println("  - Working hours for slot generation")
	fmt.Println("\nAPI keys come from the environment:")
	fmt.Println("  GROQ_API_KEY, LOCATIONIQ_API_KEY")
}

func showConfig() {
	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = config.DefaultConfig()
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).
			Render("Could not load config. Showing defaults:\n"))
	} else {
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true).
			Render("Current Configuration:\n"))
	}

	// Keys stay out of the printout.
	cfg.LLM.APIKey = ""
	cfg.Places.APIKey = ""

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(string(data))

	defaultPath, _ := config.Path()
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).
		Render("Default config file: " + defaultPath))
}
