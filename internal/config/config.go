package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/pack-orders/internal/report"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

const (
	defaultOrderFile      = "./datafile"
	defaultPort           = "8080"
	defaultLogLevel       = "warn"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50

	envPrefix = "PACKORDER_"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	CatalogFile string
	OrderFile   string
	Policy      resolver.Policy
	Workers     int
	MaxQuantity int
	Output      report.Format
	LogLevel    string

	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	CatalogFile          string        `yaml:"catalog_file"`
	OrderFile            string        `yaml:"order_file"`
	Policy               string        `yaml:"policy"`
	Workers              int           `yaml:"workers"`
	MaxQuantity          int           `yaml:"max_quantity"`
	Output               string        `yaml:"output"`
	LogLevel             string        `yaml:"log_level"`
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides. Nil fields are not set.
type CLIOverrides struct {
	ConfigFile     string
	CatalogFile    *string
	OrderFile      *string
	Policy         *string
	Workers        *int
	MaxQuantity    *int
	Output         *string
	LogLevel       *string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		OrderFile:            defaultOrderFile,
		Policy:               resolver.PolicyFirstFound,
		MaxQuantity:          resolver.DefaultMaxQuantity,
		Output:               report.FormatText,
		LogLevel:             defaultLogLevel,
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	setString(&cfg.CatalogFile, yamlCfg.CatalogFile)
	setString(&cfg.OrderFile, yamlCfg.OrderFile)
	setString(&cfg.LogLevel, yamlCfg.LogLevel)
	setString(&cfg.Port, yamlCfg.Port)

	if yamlCfg.Policy != "" {
		cfg.Policy = resolver.Policy(yamlCfg.Policy)
	}
	if yamlCfg.Output != "" {
		cfg.Output = report.Format(yamlCfg.Output)
	}
	if yamlCfg.Workers > 0 {
		cfg.Workers = yamlCfg.Workers
	}
	if yamlCfg.MaxQuantity > 0 {
		cfg.MaxQuantity = yamlCfg.MaxQuantity
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Unparseable
// values are ignored.
func applyEnvConfig(cfg *Config) {
	setString(&cfg.Port, env("PORT"))
	setString(&cfg.CatalogFile, env(envPrefix+"CATALOG_FILE"))
	setString(&cfg.OrderFile, env(envPrefix+"ORDER_FILE"))
	setString(&cfg.LogLevel, env(envPrefix+"LOG_LEVEL"))

	if policy := env(envPrefix + "POLICY"); policy != "" {
		cfg.Policy = resolver.Policy(policy)
	}
	if output := env(envPrefix + "OUTPUT"); output != "" {
		cfg.Output = report.Format(output)
	}

	if workers := env(envPrefix + "WORKERS"); workers != "" {
		if value, err := strconv.Atoi(workers); err == nil && value > 0 {
			cfg.Workers = value
		}
	}

	if maxQty := env(envPrefix + "MAX_QUANTITY"); maxQty != "" {
		if value, err := strconv.Atoi(maxQty); err == nil && value > 0 {
			cfg.MaxQuantity = value
		}
	}

	if rps := env(envPrefix + "RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env(envPrefix + "RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.CatalogFile != nil {
		setString(&cfg.CatalogFile, *overrides.CatalogFile)
	}
	if overrides.OrderFile != nil {
		setString(&cfg.OrderFile, *overrides.OrderFile)
	}
	if overrides.LogLevel != nil {
		setString(&cfg.LogLevel, *overrides.LogLevel)
	}
	if overrides.Port != nil {
		setString(&cfg.Port, *overrides.Port)
	}
	if overrides.Policy != nil && *overrides.Policy != "" {
		cfg.Policy = resolver.Policy(*overrides.Policy)
	}
	if overrides.Output != nil && *overrides.Output != "" {
		cfg.Output = report.Format(*overrides.Output)
	}
	// Zero is meaningful on the command line: workers 0 restores the
	// GOMAXPROCS default and max quantity 0 is rejected by validateConfig.
	if overrides.Workers != nil {
		cfg.Workers = *overrides.Workers
	}
	if overrides.MaxQuantity != nil {
		cfg.MaxQuantity = *overrides.MaxQuantity
	}
	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration and normalises the
// enumerated settings.
func validateConfig(cfg *Config) error {
	policy, err := resolver.ParsePolicy(string(cfg.Policy))
	if err != nil {
		return err
	}
	cfg.Policy = policy

	output, err := report.ParseFormat(string(cfg.Output))
	if err != nil {
		return err
	}
	cfg.Output = output

	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit rps must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit burst must be >= 0")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if cfg.MaxQuantity <= 0 {
		return fmt.Errorf("max quantity must be positive")
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
