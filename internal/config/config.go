package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"outbound-email-engine/internal/domain"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // /health + /metrics; 0 disables the server
}

type AIConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	Temperature    float64       `yaml:"temperature"`
	TopP           float64       `yaml:"top_p"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// FiltersConfig toggles the eligibility rules applied while loading the
// contact database. Pointers distinguish "absent" from an explicit false.
type FiltersConfig struct {
	ExcludeUnsubscribed   *bool `yaml:"exclude_unsubscribed"`
	ExcludeBlockedDomains *bool `yaml:"exclude_blocked_domains"`
	ExcludeContacted      *bool `yaml:"exclude_contacted"`
}

func (f FiltersConfig) Unsubscribed() bool {
	return f.ExcludeUnsubscribed == nil || *f.ExcludeUnsubscribed
}

func (f FiltersConfig) BlockedDomains() bool {
	return f.ExcludeBlockedDomains == nil || *f.ExcludeBlockedDomains
}

func (f FiltersConfig) Contacted() bool {
	return f.ExcludeContacted != nil && *f.ExcludeContacted
}

type OutreachConfig struct {
	CSVPath          string        `yaml:"csv_path"`
	OutputDir        string        `yaml:"output_dir"`
	Limit            int           `yaml:"limit"`             // max contacts per cohort
	BatchThreshold   int           `yaml:"batch_threshold"`   // > threshold goes through the bulk path
	PollInterval     time.Duration `yaml:"poll_interval"`     // batch status poll cadence
	CompletionWindow string        `yaml:"completion_window"` // provider-side SLA, e.g. "24h"
	Filters          FiltersConfig `yaml:"filters"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	AI       AIConfig       `yaml:"ai"`
	Outreach OutreachConfig `yaml:"outreach"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML config, applies defaults, then applies
// environment overrides (OPENAI_API_KEY, OPENAI_MODEL, CSV_PATH,
// OUTBOUND_LIMIT) so a .env file alone can steer a run.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, domain.ErrConfiguration)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %v: %w", err, domain.ErrConfiguration)
	}
	cfg.Runtime.Dev = dev

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4.1-mini"
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.4
	}
	if cfg.AI.TopP == 0 {
		cfg.AI.TopP = 0.9
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 30 * time.Second
	}
	if cfg.Outreach.CSVPath == "" {
		cfg.Outreach.CSVPath = "data/database.csv"
	}
	if cfg.Outreach.OutputDir == "" {
		cfg.Outreach.OutputDir = "."
	}
	if cfg.Outreach.Limit <= 0 {
		cfg.Outreach.Limit = 5
	}
	if cfg.Outreach.BatchThreshold <= 0 {
		cfg.Outreach.BatchThreshold = 10
	}
	if cfg.Outreach.PollInterval <= 0 {
		cfg.Outreach.PollInterval = 15 * time.Second
	}
	if cfg.Outreach.CompletionWindow == "" {
		cfg.Outreach.CompletionWindow = "24h"
	}

	// env overrides
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("CSV_PATH"); v != "" {
		cfg.Outreach.CSVPath = v
	}
	if v := os.Getenv("OUTBOUND_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Outreach.Limit = n
		}
	}

	// Minimal validation
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("ai.api_key (or OPENAI_API_KEY) is required: %w", domain.ErrConfiguration)
	}

	return &cfg, nil
}
