package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/eugenenazirov/pack-orders/internal/order"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

// Format selects how results are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Write renders results to w in the requested format.
func Write(w io.Writer, format Format, results []order.LineResult) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, results)
	case FormatText, "":
		return writeText(w, results)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// packIndent lines pack rows up under the order header.
const packIndent = "        "

func writeText(w io.Writer, results []order.LineResult) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		switch {
		case errors.Is(r.Err, order.ErrMalformedLine):
			fmt.Fprintf(bw, "Skipping malformed line %d: %q\n", r.Line.Number, r.Line.Raw)
		case r.NotFound():
			fmt.Fprintf(bw, "Could not find %s in stock\n", r.Line.ProductCode)
		case r.Err != nil:
			fmt.Fprintf(bw, "Line %d failed: %v\n", r.Line.Number, r.Err)
		default:
			fmt.Fprintf(bw, "%s %s %s\n", r.Line.Quantity, r.Line.ProductCode, Money(r.Result.TotalPrice.StringFixed(2)))
			for _, p := range r.Result.Packs {
				fmt.Fprintf(bw, "%s%d x %d %s\n", packIndent, p.Count, p.Size, Money(p.UnitPrice.StringFixed(2)))
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}

// Money prefixes an already formatted amount with the currency sign.
func Money(amount string) string {
	return "$" + amount
}

// Pack is the JSON form of a chosen pack.
type Pack struct {
	Size      int    `json:"size"`
	Count     int    `json:"count"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

// Result is the JSON form of a resolver result.
type Result struct {
	Status     string `json:"status"`
	Quantity   int    `json:"quantity"`
	TotalPacks int    `json:"totalPacks"`
	TotalItems int    `json:"totalItems"`
	TotalPrice string `json:"totalPrice"`
	Packs      []Pack `json:"packs"`
}

// Line is the JSON form of one processed order line.
type Line struct {
	Line        int     `json:"line"`
	Quantity    string  `json:"quantity,omitempty"`
	ProductCode string  `json:"productCode,omitempty"`
	ProductName string  `json:"productName,omitempty"`
	Error       string  `json:"error,omitempty"`
	Result      *Result `json:"result,omitempty"`
}

// NewResult converts a resolver result into its JSON form.
func NewResult(r resolver.OrderResult) Result {
	packs := make([]Pack, 0, len(r.Packs))
	for _, p := range r.Packs {
		packs = append(packs, Pack{
			Size:      p.Size,
			Count:     p.Count,
			UnitPrice: p.UnitPrice.StringFixed(2),
			LineTotal: p.LineTotal().StringFixed(2),
		})
	}
	return Result{
		Status:     r.Status.String(),
		Quantity:   r.Quantity,
		TotalPacks: r.TotalPacks(),
		TotalItems: r.Dispensed(),
		TotalPrice: r.TotalPrice.StringFixed(2),
		Packs:      packs,
	}
}

// NewLines converts processed lines into their JSON form.
func NewLines(results []order.LineResult) []Line {
	out := make([]Line, 0, len(results))
	for _, r := range results {
		l := Line{
			Line:        r.Line.Number,
			Quantity:    r.Line.Quantity,
			ProductCode: r.Line.ProductCode,
			ProductName: r.Product.Name,
		}
		if r.Err != nil {
			l.Error = r.Err.Error()
		} else {
			res := NewResult(r.Result)
			l.Result = &res
		}
		out = append(out, l)
	}
	return out
}

func writeJSON(w io.Writer, results []order.LineResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewLines(results)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
