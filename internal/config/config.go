// Package config loads pipeline configuration from YAML with defaults and
// validation. The zero-config case runs the stock UK equity ETF universe
// over 2019-01-01..2025-01-01 at monthly granularity.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config holds all pipeline settings.
type Config struct {
	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"logging"`

	// Universe is the instrument list fed to the price table builder.
	// Defaults to the UK equity ETF set the analysis was designed around.
	Universe []string `yaml:"universe" default:"[\"ISF.L\",\"VMID.L\",\"VUKG.L\",\"CUKX.L\",\"XUKX.L\",\"IUKD.L\",\"VUKE.L\",\"XUKS.L\",\"UKRE.L\"]" validate:"min=1,dive,required"`

	Range struct {
		Start string `yaml:"start" default:"2019-01-01" validate:"datetime=2006-01-02"`
		End   string `yaml:"end" default:"2025-01-01" validate:"datetime=2006-01-02"`
	} `yaml:"range"`

	Provider struct {
		BaseURL     string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
		Timeout     time.Duration `yaml:"timeout" default:"30s"`
		MaxRetries  int           `yaml:"max_retries" default:"3" validate:"min=0"`
		Concurrency int           `yaml:"concurrency" default:"4" validate:"min=1"`
	} `yaml:"provider"`

	Analysis struct {
		TrailingMonths int `yaml:"trailing_months" default:"12" validate:"min=1"`
		Buckets        int `yaml:"buckets" default:"3" validate:"min=2"`
	} `yaml:"analysis"`

	Output struct {
		Dir string `yaml:"dir" default:"out"`
	} `yaml:"output"`

	// Optional persistence. Empty DSNs keep the run memory-only.
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	ClickHouse struct {
		DSN string `yaml:"dsn"`
	} `yaml:"clickhouse"`
}

// Load reads a YAML config file, applies defaults and validates.
// An empty path returns the pure-default configuration.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}

	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	start, end := c.mustRange()
	if !start.Before(end) {
		return nil, fmt.Errorf("validate config: range start %s not before end %s", c.Range.Start, c.Range.End)
	}

	return &c, nil
}

// StartDate returns the configured range start as UTC midnight.
func (c *Config) StartDate() time.Time {
	s, _ := c.mustRange()
	return s
}

// EndDate returns the configured range end as UTC midnight.
func (c *Config) EndDate() time.Time {
	_, e := c.mustRange()
	return e
}

func (c *Config) mustRange() (time.Time, time.Time) {
	// Formats were checked by the validator; parse errors cannot occur here.
	start, _ := time.ParseInLocation(dateLayout, c.Range.Start, time.UTC)
	end, _ := time.ParseInLocation(dateLayout, c.Range.End, time.UTC)
	return start, end
}
