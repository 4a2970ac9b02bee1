package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eugenenazirov/pack-orders/internal/catalog"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

var (
	// ErrMalformedLine is reported for lines that are not "<quantity> <code>".
	ErrMalformedLine = errors.New("order line must be \"<quantity> <productCode>\"")
	// ErrOrderFileNotFound is returned when the order file does not exist.
	ErrOrderFileNotFound = errors.New("order file not found")
)

// Line is one non-blank line of an order file.
type Line struct {
	Number      int
	Raw         string
	Quantity    string
	ProductCode string
}

// ParseLine splits a raw order line into its quantity token and product
// code. The quantity is left unvalidated for the resolver.
func ParseLine(number int, raw string) (Line, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return Line{Number: number, Raw: raw}, fmt.Errorf("%w: line %d has %d fields", ErrMalformedLine, number, len(fields))
	}
	return Line{
		Number:      number,
		Raw:         raw,
		Quantity:    fields[0],
		ProductCode: fields[1],
	}, nil
}

// LineResult pairs an order line with its resolution. Err is set when the
// line could not be resolved at all (malformed or unknown product);
// resolver failures are reported through Result.Status instead.
type LineResult struct {
	Line    Line
	Product catalog.Product
	Result  resolver.OrderResult
	Err     error
}

// NotFound reports whether the line referenced an unknown product.
func (r LineResult) NotFound() bool {
	return errors.Is(r.Err, catalog.ErrProductNotFound)
}
