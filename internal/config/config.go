package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rizkypratama/kolradar/pkg/scoring"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScoringConfig holds the normalization scale maxima. Every value must be
// positive: normalization divides by them, so a non-positive maximum is a
// startup error, never a per-call check.
type ScoringConfig struct {
	MaxEngagementRate float64 `yaml:"max_engagement_rate"`
	MaxReach          float64 `yaml:"max_reach"`
	MaxAudiencePct    float64 `yaml:"max_audience_pct"`
	MaxRateCard       float64 `yaml:"max_rate_card"`
}

// Bounds converts the scoring section into engine scale bounds.
func (s ScoringConfig) Bounds() scoring.Bounds {
	return scoring.Bounds{
		MaxEngagementRate: s.MaxEngagementRate,
		MaxReach:          s.MaxReach,
		MaxAudiencePct:    s.MaxAudiencePct,
		MaxRateCard:       s.MaxRateCard,
	}
}

// ScheduleConfig configures the ranking consistency sweep interval.
type ScheduleConfig struct {
	SweepInterval string `yaml:"sweep_interval"`
}

// ParseSweepInterval returns the sweep interval as time.Duration.
func (s ScheduleConfig) ParseSweepInterval() time.Duration {
	d, err := time.ParseDuration(s.SweepInterval)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./kolradar.db"},
		Scoring: ScoringConfig{
			MaxEngagementRate: 10,
			MaxReach:          100000,
			MaxAudiencePct:    100,
			MaxRateCard:       10000000,
		},
		Schedule: ScheduleConfig{SweepInterval: "30m"},
		Alerts:   AlertsConfig{},
		Server:   ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file, applies env var overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the scoring engine cannot run on.
func (c *Config) Validate() error {
	maxes := map[string]float64{
		"max_engagement_rate": c.Scoring.MaxEngagementRate,
		"max_reach":           c.Scoring.MaxReach,
		"max_audience_pct":    c.Scoring.MaxAudiencePct,
		"max_rate_card":       c.Scoring.MaxRateCard,
	}
	for name, v := range maxes {
		if v <= 0 {
			return fmt.Errorf("config: scoring.%s must be > 0, got %v", name, v)
		}
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KOLRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := envFloat("KOLRADAR_MAX_ENGAGEMENT_RATE"); v != 0 {
		cfg.Scoring.MaxEngagementRate = v
	}
	if v := envFloat("KOLRADAR_MAX_REACH"); v != 0 {
		cfg.Scoring.MaxReach = v
	}
	if v := envFloat("KOLRADAR_MAX_AUDIENCE_PCT"); v != 0 {
		cfg.Scoring.MaxAudiencePct = v
	}
	if v := envFloat("KOLRADAR_MAX_RATE_CARD"); v != 0 {
		cfg.Scoring.MaxRateCard = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
