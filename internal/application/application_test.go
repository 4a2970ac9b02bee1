package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/pack-orders/internal/config"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if got := len(app.store.Products()); got != 3 {
		t.Fatalf("expected default products, got %d", got)
	}
	if app.resolver.Policy() != resolver.PolicyFewestPacks {
		t.Fatalf("expected configured policy, got %s", app.resolver.Policy())
	}
	if app.resolver.MaxQuantity() != 5000 {
		t.Fatalf("expected configured max quantity, got %d", app.resolver.MaxQuantity())
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.recorder == nil {
		t.Fatalf("expected server, router, handler and recorder to be initialized")
	}
	if app.Server() != app.server || app.Processor() != app.processor {
		t.Fatalf("accessors did not return underlying instances")
	}
}

func TestNewLoadsCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
products:
  - code: BG
    name: Bagel
    packs:
      - {size: 4, price: 3.20}
      - {size: 6, price: "4.50"}
      - {size: x, price: 1}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := baseTestConfig(":0")
	cfg.CatalogFile = path
	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := app.store.Lookup("VS5"); err == nil {
		t.Fatalf("expected catalog file to replace defaults")
	}

	results, err := app.Processor().Process(context.Background(), strings.NewReader("10 BG\n"))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if got := results[0].Result.TotalPrice.StringFixed(2); got != "7.70" {
		t.Fatalf("expected 7.70, got %s", got)
	}
}

func TestNewReturnsErrorForBadCatalog(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for missing catalog")
	}

	path := filepath.Join(t.TempDir(), "dup.yaml")
	dup := "products:\n  - {code: A, packs: [{size: 1, price: 1}]}\n  - {code: A, packs: [{size: 2, price: 1}]}\n"
	if err := os.WriteFile(path, []byte(dup), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cfg.CatalogFile = path
	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for duplicate product codes")
	}
}

func TestRouterServesAPI(t *testing.T) {
	app, err := New(baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	rec := httptest.NewRecorder()
	app.Server().Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health endpoint, got %d", rec.Code)
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Policy:               resolver.PolicyFewestPacks,
		MaxQuantity:          5000,
		Workers:              2,
		Port:                 port,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
