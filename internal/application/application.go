package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/pack-orders/internal/api"
	"github.com/eugenenazirov/pack-orders/internal/catalog"
	"github.com/eugenenazirov/pack-orders/internal/config"
	"github.com/eugenenazirov/pack-orders/internal/metrics"
	"github.com/eugenenazirov/pack-orders/internal/order"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	store     *catalog.MemoryStore
	resolver  *resolver.Resolver
	recorder  *metrics.Recorder
	processor *order.Processor
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := newStore(cfg.CatalogFile, logger)
	if err != nil {
		return nil, err
	}

	res := resolver.New(
		resolver.WithPolicy(cfg.Policy),
		resolver.WithMaxQuantity(cfg.MaxQuantity),
	)
	recorder := metrics.New()
	processor := order.NewProcessor(store, res, logger,
		order.WithWorkers(cfg.Workers),
		order.WithRecorder(recorder),
	)

	handler := api.NewHandler(store, res, processor, api.WithMetrics(recorder))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		store:     store,
		resolver:  res,
		recorder:  recorder,
		processor: processor,
		handler:   handler,
		router:    router,
		logger:    logger,
		server:    NewServer(cfg, router),
	}, nil
}

func newStore(path string, logger *zap.Logger) (*catalog.MemoryStore, error) {
	store := catalog.NewMemoryStore()
	if path == "" {
		return store, nil
	}

	products, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := store.Replace(products); err != nil {
		return nil, fmt.Errorf("failed to apply catalog %s: %w", path, err)
	}

	for _, p := range products {
		if invalid := p.Invalid(); len(invalid) > 0 {
			logger.Warn("catalog product has unusable pack entries",
				zap.String("product", p.Code),
				zap.Int("invalid", len(invalid)),
			)
		}
	}
	logger.Info("catalog loaded", zap.String("path", path), zap.Int("products", len(products)))
	return store, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.String("policy", string(a.resolver.Policy())),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Processor returns the order processor used by both the CLI and the API.
func (a *App) Processor() *order.Processor {
	return a.processor
}
