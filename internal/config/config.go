// Package config holds the application configuration and its defaults.
package config

import (
	"fmt"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"

	"github.com/insightdelivered/statement-engine/internal/errors"
	"github.com/insightdelivered/statement-engine/internal/models"
)

var DefaultConfig = []byte(`
application: "statement-engine"

logger:
  level: "info"

is_prod_mode: false

server:
  port: 8080
  body_limit_mb: 16

engine:
  home_currency: "INR"
  default_type: "DEBIT"
  categorize: true
  detect_subscriptions: false
`)

type Config struct {
	Application string `koanf:"application"`
	Logger      Logger `koanf:"logger"`
	IsProdMode  bool   `koanf:"is_prod_mode"`
	Server      Server `koanf:"server"`
	Engine      Engine `koanf:"engine"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Server struct {
	Port        int `koanf:"port"`
	BodyLimitMB int `koanf:"body_limit_mb"`
}

type Engine struct {
	HomeCurrency        string `koanf:"home_currency"`
	DefaultType         string `koanf:"default_type"`
	Categorize          bool   `koanf:"categorize"`
	DetectSubscriptions bool   `koanf:"detect_subscriptions"`
}

// Load reads the built-in defaults and overlays the YAML file at path when
// one is given. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser())
	if path != "" {
		_ = k.Load(file.Provider(path), yaml.Parser())
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		ve.Add("server.port", "must be between 1 and 65535")
	}
	if c.Server.BodyLimitMB <= 0 {
		ve.Add("server.body_limit_mb", "must be positive")
	}
	if c.Engine.HomeCurrency == "" {
		ve.Add("engine.home_currency", "cannot be empty")
	}
	if c.Engine.DefaultType != models.TypeDebit && c.Engine.DefaultType != models.TypeCredit {
		ve.Add("engine.default_type", "must be DEBIT or CREDIT")
	}

	return ve.Err()
}
