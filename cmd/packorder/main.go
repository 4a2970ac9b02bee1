package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pack-orders/internal/application"
	"github.com/eugenenazirov/pack-orders/internal/config"
	"github.com/eugenenazirov/pack-orders/internal/logging"
	"github.com/eugenenazirov/pack-orders/internal/order"
	"github.com/eugenenazirov/pack-orders/internal/report"
)

var signalNotify = signal.Notify

type cli struct {
	app *kingpin.Application

	configFile  *string
	catalogFile *string
	policy      *string
	workers     *int
	maxQuantity *int
	logLevel    *string

	resolve   *kingpin.CmdClause
	orderFile *string
	output    *string

	serve          *kingpin.CmdClause
	port           *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func newCLI() *cli {
	app := kingpin.New("packorder", "Bakery order resolver - splits ordered quantities into the packs a product is sold in")
	c := &cli{app: app}

	c.configFile = app.Flag("config", "Path to YAML configuration file").String()
	c.catalogFile = app.Flag("catalog", "Path to YAML product catalog (defaults to the built-in bakery catalog)").String()
	c.policy = app.Flag("policy", "Combination policy: first-found or fewest-packs").String()
	c.workers = app.Flag("workers", "Order lines resolved concurrently (0 uses GOMAXPROCS)").Default("-1").Int()
	c.maxQuantity = app.Flag("max-quantity", "Largest quantity accepted on an order line").Default("-1").Int()
	c.logLevel = app.Flag("log-level", "Log level: debug, info, warn or error").String()

	c.resolve = app.Command("resolve", "Resolve an order file and print the pack breakdown").Default()
	c.orderFile = c.resolve.Arg("order-file", "Order file with one \"<quantity> <code>\" per line").String()
	c.output = c.resolve.Flag("output", "Output format: text or json").Short('o').String()

	c.serve = app.Command("serve", "Serve the resolver over HTTP")
	c.port = c.serve.Flag("port", "HTTP port exposed by the service").String()
	c.rateLimitRPS = c.serve.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	c.rateLimitBurst = c.serve.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	return c
}

func (c *cli) overrides() *config.CLIOverrides {
	o := &config.CLIOverrides{ConfigFile: *c.configFile}

	if *c.catalogFile != "" {
		o.CatalogFile = c.catalogFile
	}
	if *c.policy != "" {
		o.Policy = c.policy
	}
	if *c.workers >= 0 {
		o.Workers = c.workers
	}
	if *c.maxQuantity >= 0 {
		o.MaxQuantity = c.maxQuantity
	}
	if *c.logLevel != "" {
		o.LogLevel = c.logLevel
	}
	if *c.orderFile != "" {
		o.OrderFile = c.orderFile
	}
	if *c.output != "" {
		o.Output = c.output
	}
	if *c.port != "" {
		o.Port = c.port
	}
	if *c.rateLimitRPS >= 0 {
		o.RateLimitRPS = c.rateLimitRPS
	}
	if *c.rateLimitBurst >= 0 {
		o.RateLimitBurst = c.rateLimitBurst
	}
	return o
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	c := newCLI()
	c.app.ErrorWriter(stderr)
	c.app.UsageWriter(stderr)

	command, err := c.app.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "packorder: %v\n", err)
		return 2
	}

	cfg, err := config.Load(c.overrides())
	if err != nil {
		fmt.Fprintf(stderr, "packorder: failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "packorder: failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		fmt.Fprintf(stderr, "packorder: %v\n", err)
		return 1
	}

	switch command {
	case c.serve.FullCommand():
		if err := app.Start(); err != nil {
			logger.Error("failed to start server", zap.Error(err))
			return 1
		}
		shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
		return 0
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := resolveOrders(ctx, app.Processor(), cfg, stdout); err != nil {
			logger.Error("order resolution failed", zap.String("order_file", cfg.OrderFile), zap.Error(err))
			if errors.Is(err, order.ErrOrderFileNotFound) {
				fmt.Fprintf(stderr, "Order file not found: %s\n", cfg.OrderFile)
			} else {
				fmt.Fprintf(stderr, "packorder: %v\n", err)
			}
			return 1
		}
		return 0
	}
}

func resolveOrders(ctx context.Context, proc *order.Processor, cfg config.Config, w io.Writer) error {
	results, err := proc.ProcessFile(ctx, cfg.OrderFile)
	if err != nil {
		return err
	}
	return report.Write(w, cfg.Output, results)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
