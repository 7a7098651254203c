package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{})
	cfg, err := Load("macrolog-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Auth.Required {
		t.Fatal("Auth.Required should default to false in dev")
	}
	if cfg.DB.MaxOpenConns != 10 {
		t.Fatalf("DB.MaxOpenConns = %d", cfg.DB.MaxOpenConns)
	}
	if cfg.DB.QueryTimeout != 8*time.Second {
		t.Fatalf("DB.QueryTimeout = %v", cfg.DB.QueryTimeout)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Timeout != 15*time.Second {
		t.Fatalf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Export.Enabled {
		t.Fatal("Export.Enabled should default to false")
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	lookup := mapLookup(map[string]string{"MACROLOG_PROFILE": "prod"})
	cfg, err := Load("macrolog-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if !cfg.Auth.Required {
		t.Fatal("Auth.Required should default to true in prod")
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.Export.UseSSL {
		t.Fatal("Export.UseSSL should default to true in prod")
	}
	if cfg.Export.AutoCreateBucket {
		t.Fatal("Export.AutoCreateBucket should default to false in prod")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"MACROLOG_HTTP_ADDR":        ":9999",
		"MACROLOG_DB_DSN":           "postgres://user:pw@db:5432/log",
		"MACROLOG_DB_QUERY_TIMEOUT": "3s",
		"MACROLOG_AI_MODEL":         "llama-3.1-70b",
		"MACROLOG_AI_TEMPERATURE":   "0.5",
		"MACROLOG_EXPORT_ENABLED":   "true",
		"MACROLOG_LOG_LEVEL":        "error",
		"MACROLOG_LOG_JSON":         "false",
	})
	cfg, err := Load("macrolog-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.DB.DSN != "postgres://user:pw@db:5432/log" {
		t.Fatalf("DB.DSN = %q", cfg.DB.DSN)
	}
	if cfg.DB.QueryTimeout != 3*time.Second {
		t.Fatalf("DB.QueryTimeout = %v", cfg.DB.QueryTimeout)
	}
	if cfg.AI.Model != "llama-3.1-70b" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Temperature != 0.5 {
		t.Fatalf("AI.Temperature = %v", cfg.AI.Temperature)
	}
	if !cfg.Export.Enabled {
		t.Fatal("Export.Enabled should be true")
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogJSON {
		t.Fatal("LogJSON should be false")
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	lookup := mapLookup(map[string]string{"MACROLOG_PROFILE": "staging"})
	if _, err := Load("macrolog-api", lookup); err == nil {
		t.Fatal("Load() should fail for unknown profile")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration": {"MACROLOG_DB_QUERY_TIMEOUT": "soon"},
		"bad bool":     {"MACROLOG_AUTH_REQUIRED": "yep"},
		"bad int":      {"MACROLOG_DB_MAX_OPEN_CONNS": "many"},
		"bad float":    {"MACROLOG_AI_TEMPERATURE": "warm"},
		"bad level":    {"MACROLOG_LOG_LEVEL": "loud"},
	}
	for name, env := range cases {
		if _, err := Load("macrolog-api", mapLookup(env)); err == nil {
			t.Fatalf("%s: Load() should fail", name)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
