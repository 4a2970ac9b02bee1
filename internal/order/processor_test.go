package order

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/pack-orders/internal/catalog"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

type countingRecorder struct {
	mu          sync.Mutex
	resolutions map[resolver.Status]int
	outcomes    map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		resolutions: make(map[resolver.Status]int),
		outcomes:    make(map[string]int),
	}
}

func (c *countingRecorder) ObserveResolution(_ resolver.Policy, status resolver.Status, _ time.Duration) {
	c.mu.Lock()
	c.resolutions[status]++
	c.mu.Unlock()
}

func (c *countingRecorder) ObserveLine(outcome string) {
	c.mu.Lock()
	c.outcomes[outcome]++
	c.mu.Unlock()
}

func newTestProcessor(t *testing.T, opts ...ProcessorOption) *Processor {
	t.Helper()

	return NewProcessor(catalog.NewMemoryStore(), resolver.New(), zaptest.NewLogger(t), opts...)
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	line, err := ParseLine(3, "  10   VS5 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Number != 3 || line.Quantity != "10" || line.ProductCode != "VS5" {
		t.Fatalf("unexpected line %+v", line)
	}

	for _, raw := range []string{"10", "10 VS5 extra", ""} {
		if _, err := ParseLine(1, raw); !errors.Is(err, ErrMalformedLine) {
			t.Fatalf("ParseLine(%q): expected ErrMalformedLine, got %v", raw, err)
		}
	}
}

func TestProcessChallengeOrder(t *testing.T) {
	t.Parallel()

	recorder := newCountingRecorder()
	p := newTestProcessor(t, WithWorkers(2), WithRecorder(recorder))

	input := "10 VS5\r\n14 MB11\n\n13 CF\n   \n1 VS5\n4 XX1\nbroken\n"
	results, err := p.Process(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 non-blank lines, got %d", len(results))
	}

	wantTotals := []string{"17.98", "54.80", "25.85", "0.00"}
	wantNumbers := []int{1, 2, 4, 6}
	for i, want := range wantTotals {
		r := results[i]
		if r.Err != nil {
			t.Fatalf("line %d: unexpected error %v", r.Line.Number, r.Err)
		}
		if r.Line.Number != wantNumbers[i] {
			t.Fatalf("result %d: expected line number %d, got %d", i, wantNumbers[i], r.Line.Number)
		}
		if r.Result.TotalPrice.StringFixed(2) != want {
			t.Fatalf("line %d: expected total %s, got %s", r.Line.Number, want, r.Result.TotalPrice)
		}
	}
	if results[3].Result.Status != resolver.StatusUnfulfillable {
		t.Fatalf("expected 1 VS5 to be unfulfillable, got %s", results[3].Result.Status)
	}

	if !results[4].NotFound() {
		t.Fatalf("expected XX1 to be reported as not found, got %v", results[4].Err)
	}
	if !errors.Is(results[5].Err, ErrMalformedLine) {
		t.Fatalf("expected malformed line error, got %v", results[5].Err)
	}

	if recorder.outcomes[OutcomeResolved] != 3 ||
		recorder.outcomes[OutcomeUnresolved] != 1 ||
		recorder.outcomes[OutcomeNotFound] != 1 ||
		recorder.outcomes[OutcomeMalformed] != 1 {
		t.Fatalf("unexpected outcomes %v", recorder.outcomes)
	}
	if recorder.resolutions[resolver.StatusResolved] != 3 {
		t.Fatalf("unexpected resolutions %v", recorder.resolutions)
	}
}

func TestProcessInvalidQuantities(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)
	results, err := p.Process(context.Background(), strings.NewReader("-1 VS5\nhello VS5\n0 VS5\n"))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("line %d: unexpected error %v", r.Line.Number, r.Err)
		}
		if r.Result.Status != resolver.StatusInvalidQuantity || !r.Result.Empty() {
			t.Fatalf("line %d: expected empty invalid result, got %+v", r.Line.Number, r.Result)
		}
	}
}

func TestProcessPreservesOrderUnderConcurrency(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 1; i <= 500; i++ {
		if i%2 == 0 {
			b.WriteString("10 VS5\n")
		} else {
			b.WriteString("13 CF\n")
		}
	}

	results, err := newTestProcessor(t, WithWorkers(8)).Process(context.Background(), strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	for i, r := range results {
		want := "CF"
		if (i+1)%2 == 0 {
			want = "VS5"
		}
		if r.Line.Number != i+1 || r.Product.Code != want {
			t.Fatalf("result %d out of order: %+v", i, r.Line)
		}
	}
}

func TestProcessHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestProcessor(t).Process(ctx, strings.NewReader("10 VS5\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProcessFile(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(t)

	path := filepath.Join(t.TempDir(), "datafile")
	if err := os.WriteFile(path, []byte("10 VS5\n"), 0o600); err != nil {
		t.Fatalf("write order file: %v", err)
	}
	results, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile returned error: %v", err)
	}
	if len(results) != 1 || results[0].Result.Status != resolver.StatusResolved {
		t.Fatalf("unexpected results %+v", results)
	}

	_, err = p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrOrderFileNotFound) {
		t.Fatalf("expected ErrOrderFileNotFound, got %v", err)
	}
}
