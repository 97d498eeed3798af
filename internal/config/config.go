// Package config handles eventpilot configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all eventpilot configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Places   PlacesConfig   `mapstructure:"places" yaml:"places"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
}

// LLMConfig selects the reasoning service.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"`
}

// PlacesConfig selects the venue search service.
type PlacesConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Limit   int    `mapstructure:"limit" yaml:"limit"`
}

// ScheduleConfig bounds the working hours slots are generated within.
type ScheduleConfig struct {
	WorkStartHour int `mapstructure:"work_start_hour" yaml:"work_start_hour"`
	WorkEndHour   int `mapstructure:"work_end_hour" yaml:"work_end_hour"`
}

// SessionConfig tunes the orchestration loop.
type SessionConfig struct {
	MaxMessages   int `mapstructure:"max_messages" yaml:"max_messages"`
	MaxRetries    int `mapstructure:"max_retries" yaml:"max_retries"`
	RetryInterval int `mapstructure:"retry_interval_seconds" yaml:"retry_interval_seconds"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama3-70b-8192",
			Temperature: 0.3,
		},
		Places: PlacesConfig{
			BaseURL: "https://us1.locationiq.com/v1",
			Limit:   5,
		},
		Schedule: ScheduleConfig{
			WorkStartHour: 9,
			WorkEndHour:   18,
		},
		Session: SessionConfig{
			MaxMessages:   0,
			MaxRetries:    5,
			RetryInterval: 2,
		},
	}
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".eventpilot"), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from path, with defaults filling anything the
// file leaves unset. An empty path loads the default location; a missing
// file yields pure defaults. Environment variables override the file:
// EVENTPILOT_LLM_API_KEY etc., plus the conventional GROQ_API_KEY and
// LOCATIONIQ_API_KEY.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := DefaultConfig()
	v.SetDefault("llm.base_url", defaults.LLM.BaseURL)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.temperature", defaults.LLM.Temperature)
	v.SetDefault("places.base_url", defaults.Places.BaseURL)
	v.SetDefault("places.limit", defaults.Places.Limit)
	v.SetDefault("schedule.work_start_hour", defaults.Schedule.WorkStartHour)
	v.SetDefault("schedule.work_end_hour", defaults.Schedule.WorkEndHour)
	v.SetDefault("session.max_messages", defaults.Session.MaxMessages)
	v.SetDefault("session.max_retries", defaults.Session.MaxRetries)
	v.SetDefault("session.retry_interval_seconds", defaults.Session.RetryInterval)

	v.SetEnvPrefix("EVENTPILOT")
	v.AutomaticEnv()
	v.BindEnv("llm.api_key", "EVENTPILOT_LLM_API_KEY", "GROQ_API_KEY")
	v.BindEnv("places.api_key", "EVENTPILOT_PLACES_API_KEY", "LOCATIONIQ_API_KEY")

	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return defaults, err
		}
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return defaults, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaults, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return defaults, err
	}
	return cfg, nil
}

// Validate rejects configurations the planner cannot run with.
func (c Config) Validate() error {
	if c.Schedule.WorkStartHour < 0 || c.Schedule.WorkEndHour > 24 ||
		c.Schedule.WorkStartHour >= c.Schedule.WorkEndHour {
		return fmt.Errorf("invalid working hours %d-%d",
			c.Schedule.WorkStartHour, c.Schedule.WorkEndHour)
	}
	if c.Places.Limit <= 0 {
		return fmt.Errorf("places limit must be positive, got %d", c.Places.Limit)
	}
	return nil
}

// Save writes the configuration to path as YAML, creating the directory
// if needed. An empty path saves to the default location. API keys are
// redacted; they belong in the environment.
func (c Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	redacted := c
	redacted.LLM.APIKey = ""
	redacted.Places.APIKey = ""

	data, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Exists reports whether the default config file exists.
func Exists() bool {
	path, err := Path()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
