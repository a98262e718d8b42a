// Package config loads bulksend settings from an optional YAML file, an
// optional .env file, and BULKSEND_* environment variables, in increasing
// order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bulksend/internal/gateway"
	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/sentlog"
	"github.com/roach88/bulksend/internal/templates"
)

// Defaults.
const (
	DefaultInterMessageDelay = 5 * time.Second
	DefaultJournal           = "bulksend.db"
	DefaultPacing            = 30
	DefaultEnvFile           = ".env"
)

// Pacing choices offered to the operator: 10 through 60 in steps of 5.
const (
	MinPacing  = 10
	MaxPacing  = 60
	PacingStep = 5
)

// ErrInvalidPacing is returned for a pacing outside the offered choices.
var ErrInvalidPacing = errors.New("invalid pacing")

// Gateway selects the dispatch gateway.
type Gateway struct {
	Kind    string   `yaml:"kind"`
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Config holds every tunable.
type Config struct {
	CountryCode       string               `yaml:"country_code"`
	InterMessageDelay time.Duration        `yaml:"inter_message_delay"`
	SentLog           string               `yaml:"sent_log"`
	Journal           string               `yaml:"journal"`
	LogLevel          string               `yaml:"log_level"`
	MetricsFile       string               `yaml:"metrics_file,omitempty"`
	DefaultProject    string               `yaml:"default_project"`
	DefaultPacing     int                  `yaml:"default_pacing"`
	Keywords          []string             `yaml:"keywords,omitempty"`
	Gateway           Gateway              `yaml:"gateway"`
	Templates         []templates.Template `yaml:"templates,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CountryCode:       phone.DefaultCountryCode,
		InterMessageDelay: DefaultInterMessageDelay,
		SentLog:           sentlog.DefaultPath,
		Journal:           DefaultJournal,
		LogLevel:          "info",
		DefaultProject:    templates.Defaults[0].Name,
		DefaultPacing:     DefaultPacing,
		Gateway:           Gateway{Kind: gateway.KindStub},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty), the env file (DefaultEnvFile when empty; a missing file is not an
// error), and the process environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// loadEnvFile populates the environment from an env file without
// overriding variables that are already set.
func loadEnvFile(envFile string) error {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}
	err := godotenv.Load(envFile)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", envFile, err)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("BULKSEND_COUNTRY_CODE", &c.CountryCode)
	str("BULKSEND_SENT_LOG", &c.SentLog)
	str("BULKSEND_JOURNAL", &c.Journal)
	str("BULKSEND_LOG_LEVEL", &c.LogLevel)
	str("BULKSEND_METRICS_FILE", &c.MetricsFile)
	str("BULKSEND_GATEWAY", &c.Gateway.Kind)
	str("BULKSEND_GATEWAY_COMMAND", &c.Gateway.Command)

	if v, ok := lookup("BULKSEND_INTER_MESSAGE_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BULKSEND_INTER_MESSAGE_DELAY: %w", err)
		}
		c.InterMessageDelay = d
	}
	return nil
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	if c.CountryCode == "" {
		return fmt.Errorf("country_code is required")
	}
	for _, r := range c.CountryCode {
		if r < '0' || r > '9' {
			return fmt.Errorf("country_code %q must contain digits only", c.CountryCode)
		}
	}
	if c.InterMessageDelay < 0 {
		return fmt.Errorf("inter_message_delay must not be negative")
	}
	if c.SentLog == "" {
		return fmt.Errorf("sent_log is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of [debug info warn error]", c.LogLevel)
	}
	switch strings.ToLower(c.Gateway.Kind) {
	case gateway.KindStub:
	case gateway.KindCommand:
		if c.Gateway.Command == "" {
			return fmt.Errorf("gateway.command is required for the %q gateway", gateway.KindCommand)
		}
	default:
		return fmt.Errorf("gateway.kind %q must be one of [%s %s]", c.Gateway.Kind, gateway.KindStub, gateway.KindCommand)
	}
	if err := ValidatePacing(c.DefaultPacing); err != nil {
		return fmt.Errorf("default_pacing: %w", err)
	}
	if _, err := templates.New(c.Templates...); err != nil {
		return err
	}
	return nil
}

// Catalogue returns the configured template catalogue.
func (c *Config) Catalogue() (*templates.Catalogue, error) {
	return templates.New(c.Templates...)
}

// PacingChoices lists the accepted pacing values in seconds.
func PacingChoices() []int {
	choices := make([]int, 0, (MaxPacing-MinPacing)/PacingStep+1)
	for s := MinPacing; s <= MaxPacing; s += PacingStep {
		choices = append(choices, s)
	}
	return choices
}

// ValidatePacing reports whether seconds is one of PacingChoices.
func ValidatePacing(seconds int) error {
	if seconds < MinPacing || seconds > MaxPacing || (seconds-MinPacing)%PacingStep != 0 {
		return fmt.Errorf("%w %d: must be one of %v", ErrInvalidPacing, seconds, PacingChoices())
	}
	return nil
}
