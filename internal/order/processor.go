package order

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eugenenazirov/pack-orders/internal/catalog"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

const maxLineBytes = 1 << 20

// Line outcomes reported to a Recorder.
const (
	OutcomeResolved   = "resolved"
	OutcomeUnresolved = "unresolved"
	OutcomeNotFound   = "not_found"
	OutcomeMalformed  = "malformed"
)

// Recorder receives per-line observations, typically for metrics.
type Recorder interface {
	ObserveResolution(policy resolver.Policy, status resolver.Status, elapsed time.Duration)
	ObserveLine(outcome string)
}

// Processor resolves every line of an order file against a catalog.
type Processor struct {
	store    catalog.Store
	resolver *resolver.Resolver
	logger   *zap.Logger
	recorder Recorder
	workers  int
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers bounds how many lines are resolved concurrently.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) ProcessorOption {
	return func(p *Processor) {
		p.recorder = r
	}
}

// NewProcessor constructs a Processor. Workers default to GOMAXPROCS.
func NewProcessor(store catalog.Store, res *resolver.Resolver, logger *zap.Logger, opts ...ProcessorOption) *Processor {
	p := &Processor{
		store:    store,
		resolver: res,
		logger:   logger,
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// ProcessFile opens path and processes it as an order file.
func (p *Processor) ProcessFile(ctx context.Context, path string) ([]LineResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrOrderFileNotFound, path)
		}
		return nil, fmt.Errorf("open order file: %w", err)
	}
	defer f.Close()

	return p.Process(ctx, f)
}

// Process reads order lines from r and resolves them. Lines are resolved
// concurrently but results are returned in input order; blank lines are
// skipped.
func (p *Processor) Process(ctx context.Context, r io.Reader) ([]LineResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]LineResult, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, raw := range lines {
		if gctx.Err() != nil {
			break
		}
		i, raw := i, raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processLine(raw.number, raw.text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("process orders: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process orders: %w", err)
	}

	p.logger.Debug("order file processed",
		zap.Int("lines", len(results)),
		zap.Int("workers", p.workers),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

func (p *Processor) processLine(number int, raw string) LineResult {
	line, err := ParseLine(number, raw)
	if err != nil {
		p.logger.Warn("malformed order line", zap.Int("line", number), zap.String("raw", raw))
		p.observeLine(OutcomeMalformed)
		return LineResult{Line: line, Err: err}
	}

	product, err := p.store.Lookup(line.ProductCode)
	if err != nil {
		p.logger.Warn("product not found",
			zap.Int("line", number),
			zap.String("product", line.ProductCode),
		)
		p.observeLine(OutcomeNotFound)
		return LineResult{Line: line, Err: err}
	}

	if invalid := product.Invalid(); len(invalid) > 0 {
		p.logger.Debug("ignoring invalid pack entries",
			zap.String("product", product.Code),
			zap.Int("count", len(invalid)),
		)
	}

	start := time.Now()
	result := p.resolver.Resolve(product.Catalog(), line.Quantity)
	elapsed := time.Since(start)

	if p.recorder != nil {
		p.recorder.ObserveResolution(p.resolver.Policy(), result.Status, elapsed)
	}

	if result.Status != resolver.StatusResolved {
		p.logger.Info("order line not resolved",
			zap.Int("line", number),
			zap.String("product", product.Code),
			zap.String("quantity", line.Quantity),
			zap.Stringer("status", result.Status),
		)
		p.observeLine(OutcomeUnresolved)
	} else {
		p.logger.Debug("order line resolved",
			zap.Int("line", number),
			zap.String("product", product.Code),
			zap.Int("packs", result.TotalPacks()),
			zap.String("total", result.TotalPrice.StringFixed(2)),
			zap.Duration("duration", elapsed),
		)
		p.observeLine(OutcomeResolved)
	}

	return LineResult{Line: line, Product: product, Result: result}
}

func (p *Processor) observeLine(outcome string) {
	if p.recorder != nil {
		p.recorder.ObserveLine(outcome)
	}
}

type rawLine struct {
	number int
	text   string
}

func readLines(r io.Reader) ([]rawLine, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []rawLine
	for n := 1; scanner.Scan(); n++ {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, rawLine{number: n, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read order lines: %w", err)
	}
	return lines, nil
}
