package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eugenenazirov/pack-orders/internal/report"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

var envKeys = []string{
	"PORT",
	"PACKORDER_CATALOG_FILE",
	"PACKORDER_ORDER_FILE",
	"PACKORDER_POLICY",
	"PACKORDER_WORKERS",
	"PACKORDER_MAX_QUANTITY",
	"PACKORDER_OUTPUT",
	"PACKORDER_LOG_LEVEL",
	"PACKORDER_RATE_LIMIT_RPS",
	"PACKORDER_RATE_LIMIT_BURST",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.OrderFile != "./datafile" {
		t.Fatalf("expected default order file, got %s", cfg.OrderFile)
	}
	if cfg.Policy != resolver.PolicyFirstFound {
		t.Fatalf("expected first-found policy, got %s", cfg.Policy)
	}
	if cfg.Output != report.FormatText {
		t.Fatalf("expected text output, got %s", cfg.Output)
	}
	if cfg.MaxQuantity != resolver.DefaultMaxQuantity {
		t.Fatalf("unexpected max quantity %d", cfg.MaxQuantity)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if !cfg.EnableRequestLogging || cfg.RateLimitRPS != defaultRateLimitRPS || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected server defaults %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("PACKORDER_POLICY", "Fewest-Packs")
	t.Setenv("PACKORDER_WORKERS", "3")
	t.Setenv("PACKORDER_OUTPUT", "json")
	t.Setenv("PACKORDER_MAX_QUANTITY", "not-a-number")

	cfg, err := Load(&CLIOverrides{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.Policy != resolver.PolicyFewestPacks {
		t.Fatalf("expected normalised policy, got %s", cfg.Policy)
	}
	if cfg.Workers != 3 || cfg.Output != report.FormatJSON {
		t.Fatalf("unexpected env values %+v", cfg)
	}
	if cfg.MaxQuantity != resolver.DefaultMaxQuantity {
		t.Fatalf("expected unparseable env to be ignored, got %d", cfg.MaxQuantity)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("PACKORDER_LOG_LEVEL", "debug")

	path := writeYAML(t, `
port: "7100"
catalog_file: catalog.yaml
policy: fewest-packs
workers: 6
write_timeout: 3s
enable_request_logging: false
rate_limit:
  rps: 0
`)

	port := "7200"
	workers := 0
	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port, Workers: &workers})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7200" {
		t.Fatalf("expected CLI port to win, got %s", cfg.Port)
	}
	if cfg.Workers != 0 {
		t.Fatalf("expected CLI workers 0 to override YAML, got %d", cfg.Workers)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected env log level to survive, got %s", cfg.LogLevel)
	}
	if cfg.CatalogFile != "catalog.yaml" || cfg.Policy != resolver.PolicyFewestPacks {
		t.Fatalf("expected YAML values, got %+v", cfg)
	}
	if cfg.WriteTimeout != 3*time.Second {
		t.Fatalf("expected YAML write timeout, got %s", cfg.WriteTimeout)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled from YAML")
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("expected only rps to change, got rps=%v burst=%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	policy := "cheapest"
	if _, err := Load(&CLIOverrides{Policy: &policy}); !errors.Is(err, resolver.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}

	zero := 0
	if _, err := Load(&CLIOverrides{MaxQuantity: &zero}); err == nil {
		t.Fatalf("expected error for zero max quantity")
	}

	output := "xml"
	if _, err := Load(&CLIOverrides{Output: &output}); !errors.Is(err, report.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}

	if _, err := Load(&CLIOverrides{ConfigFile: writeYAML(t, "idle_timeout: soon\n")}); err == nil {
		t.Fatalf("expected error for invalid duration")
	}

	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
