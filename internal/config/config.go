package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        int    `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
	DatabaseURL string `yaml:"database_url"`
	NatsURL     string `yaml:"nats_url"`
	NatsToken   string `yaml:"nats_token"`
	APIToken    string `yaml:"api_token"`

	GroqAPIKey  string `yaml:"groq_api_key"`
	GroqModel   string `yaml:"groq_model"`
	GroqBaseURL string `yaml:"groq_base_url"`

	CalendarBaseURL string `yaml:"calendar_base_url"`
	CalendarID      string `yaml:"calendar_id"`
	// CalendarToken is used when a sync request carries no token of its own.
	CalendarToken string `yaml:"calendar_token"`

	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:            8760,
		LogLevel:        "info",
		GroqModel:       "llama-3.3-70b-versatile",
		GroqBaseURL:     "https://api.groq.com/openai/v1",
		CalendarBaseURL: "https://www.googleapis.com/calendar/v3",
		CalendarID:      "primary",
		SessionTTL:      2 * time.Hour,
		SweepSchedule:   "@every 5m",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// SYLLABI_CONFIG if set, then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("SYLLABI_CONFIG"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envInt("SYLLABI_PORT", cfg.Port)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabaseURL = envStr("DATABASE_URL", cfg.DatabaseURL)
	cfg.NatsURL = envStr("NATS_URL", cfg.NatsURL)
	cfg.NatsToken = envStr("NATS_TOKEN", cfg.NatsToken)
	cfg.APIToken = envStr("SYLLABI_API_TOKEN", cfg.APIToken)
	cfg.GroqAPIKey = envStr("GROQ_API_KEY", cfg.GroqAPIKey)
	cfg.GroqModel = envStr("SYLLABI_MODEL", cfg.GroqModel)
	cfg.GroqBaseURL = envStr("GROQ_BASE_URL", cfg.GroqBaseURL)
	cfg.CalendarBaseURL = envStr("CALENDAR_BASE_URL", cfg.CalendarBaseURL)
	cfg.CalendarID = envStr("CALENDAR_ID", cfg.CalendarID)
	cfg.CalendarToken = envStr("CALENDAR_ACCESS_TOKEN", cfg.CalendarToken)
	cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.SweepSchedule = envStr("SESSION_SWEEP", cfg.SweepSchedule)

	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
