// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It covers both the order resolution run
// (catalog, order file, policy, output) and the HTTP server.
package config
