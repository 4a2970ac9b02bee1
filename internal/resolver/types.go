package resolver

import "github.com/shopspring/decimal"

// PackOption is a single purchasable denomination of a product.
type PackOption struct {
	Size      int
	UnitPrice decimal.Decimal
}

// Valid reports whether the option can take part in a resolution.
func (p PackOption) Valid() bool {
	return p.Size > 0 && !p.UnitPrice.IsNegative()
}

// Catalog is the ordered set of pack options available for one product.
type Catalog []PackOption

// ChosenPack is one line of a resolution: Count packs of Size at UnitPrice each.
type ChosenPack struct {
	Size      int
	Count     int
	UnitPrice decimal.Decimal
}

// LineTotal returns Count * UnitPrice.
func (c ChosenPack) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Count)))
}

// Units returns the number of individual items dispensed by this line.
func (c ChosenPack) Units() int {
	return c.Size * c.Count
}

// Status tells callers why a result is (or is not) populated.
type Status int

const (
	// StatusResolved means an exact combination was found.
	StatusResolved Status = iota
	// StatusInvalidQuantity means the quantity was not a positive integer.
	StatusInvalidQuantity
	// StatusInvalidCatalog means no valid pack options were supplied.
	StatusInvalidCatalog
	// StatusUnfulfillable means no combination of packs matches the quantity exactly.
	StatusUnfulfillable
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusInvalidQuantity:
		return "invalid_quantity"
	case StatusInvalidCatalog:
		return "invalid_catalog"
	case StatusUnfulfillable:
		return "unfulfillable"
	default:
		return "unknown"
	}
}

// OrderResult is the outcome of a single Resolve call.
// TotalPrice is always the sum of the line totals in Packs.
type OrderResult struct {
	Packs      []ChosenPack
	TotalPrice decimal.Decimal
	Quantity   int
	Status     Status
}

// newResult builds a resolved result; the total is derived from packs.
func newResult(quantity int, packs []ChosenPack) OrderResult {
	total := decimal.Zero
	for _, p := range packs {
		total = total.Add(p.LineTotal())
	}
	return OrderResult{
		Packs:      packs,
		TotalPrice: total,
		Quantity:   quantity,
		Status:     StatusResolved,
	}
}

// emptyResult is the canonical empty result carrying a failure status.
func emptyResult(quantity int, status Status) OrderResult {
	return OrderResult{
		Packs:      []ChosenPack{},
		TotalPrice: decimal.Zero,
		Quantity:   quantity,
		Status:     status,
	}
}

// Empty reports whether no packs were chosen.
func (r OrderResult) Empty() bool {
	return len(r.Packs) == 0
}

// Err maps a failure status to its sentinel error; nil when resolved.
func (r OrderResult) Err() error {
	switch r.Status {
	case StatusResolved:
		return nil
	case StatusInvalidQuantity:
		return ErrInvalidQuantity
	case StatusInvalidCatalog:
		return ErrInvalidCatalog
	default:
		return ErrCannotFulfill
	}
}

// TotalPacks returns the number of packs dispensed.
func (r OrderResult) TotalPacks() int {
	n := 0
	for _, p := range r.Packs {
		n += p.Count
	}
	return n
}

// Dispensed returns the number of individual items across all packs.
func (r OrderResult) Dispensed() int {
	n := 0
	for _, p := range r.Packs {
		n += p.Units()
	}
	return n
}
