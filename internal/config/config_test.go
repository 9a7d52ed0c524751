package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Application != "statement-engine" {
		t.Errorf("application: got %q, want %q", cfg.Application, "statement-engine")
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("logger.level: got %q, want %q", cfg.Logger.Level, "info")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port: got %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Engine.Categorize {
		t.Error("engine.categorize should default to true")
	}
	if cfg.Engine.DetectSubscriptions {
		t.Error("engine.detect_subscriptions should default to false")
	}
	if cfg.Engine.DefaultType != "DEBIT" {
		t.Errorf("engine.default_type: got %q, want %q", cfg.Engine.DefaultType, "DEBIT")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	override := []byte(`
logger:
  level: "debug"

server:
  port: 9090

engine:
  detect_subscriptions: true
`)
	if err := os.WriteFile(path, override, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Logger.Level != "debug" {
		t.Errorf("logger.level: got %q, want %q", cfg.Logger.Level, "debug")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Engine.DetectSubscriptions {
		t.Error("engine.detect_subscriptions should be overridden to true")
	}
	if cfg.Application != "statement-engine" {
		t.Errorf("application should keep its default, got %q", cfg.Application)
	}
	if !cfg.Engine.Categorize {
		t.Error("engine.categorize should keep its default")
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Application != "statement-engine" {
		t.Errorf("application: got %q, want %q", cfg.Application, "statement-engine")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty application",
			mutate:  func(c *Config) { c.Application = "" },
			wantErr: "application",
		},
		{
			name:    "empty logger level",
			mutate:  func(c *Config) { c.Logger.Level = "" },
			wantErr: "logger.level",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "zero body limit",
			mutate:  func(c *Config) { c.Server.BodyLimitMB = 0 },
			wantErr: "server.body_limit_mb",
		},
		{
			name:    "unknown default type",
			mutate:  func(c *Config) { c.Engine.DefaultType = "OUTFLOW" },
			wantErr: "engine.default_type",
		},
		{
			name:    "empty home currency",
			mutate:  func(c *Config) { c.Engine.HomeCurrency = "" },
			wantErr: "engine.home_currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
