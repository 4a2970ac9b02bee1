package resolver

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// DefaultMaxQuantity bounds the quantities the resolver accepts.
	DefaultMaxQuantity = 1_000_000
	// DefaultSearchFactor scales the first-found step budget.
	DefaultSearchFactor = 16

	maxBudget = math.MaxInt32
)

// Policy selects which exact combination is returned when several exist.
type Policy string

const (
	// PolicyFirstFound walks sizes from largest to smallest, trying the
	// largest count that does not overshoot first, and returns the first
	// exact combination reached.
	PolicyFirstFound Policy = "first-found"
	// PolicyFewestPacks returns the exact combination with the fewest packs,
	// tie-broken by the lowest total price and then by larger sizes.
	PolicyFewestPacks Policy = "fewest-packs"
)

// ParsePolicy converts a policy name into a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(name))); p {
	case PolicyFirstFound, PolicyFewestPacks:
		return p, nil
	case "":
		return PolicyFirstFound, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// Resolver chooses pack combinations for order quantities. It holds no
// mutable state and is safe for concurrent use.
type Resolver struct {
	policy       Policy
	maxQuantity  int
	searchFactor int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy selects the tie-break policy.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		if p != "" {
			r.policy = p
		}
	}
}

// WithMaxQuantity overrides the largest accepted quantity.
func WithMaxQuantity(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxQuantity = n
		}
	}
}

// WithSearchFactor scales the step budget of the first-found search.
func WithSearchFactor(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.searchFactor = n
		}
	}
}

// New creates a Resolver. Without options it uses PolicyFirstFound.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		policy:       PolicyFirstFound,
		maxQuantity:  DefaultMaxQuantity,
		searchFactor: DefaultSearchFactor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the configured policy.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// MaxQuantity returns the configured quantity ceiling.
func (r *Resolver) MaxQuantity() int {
	return r.maxQuantity
}

// Resolve picks the packs for quantity from catalog. Invalid input and
// unfulfillable quantities yield an empty, zero-priced result whose Status
// explains the failure; Resolve never panics on bad input.
func (r *Resolver) Resolve(catalog Catalog, quantity any) OrderResult {
	options := normalizeCatalog(catalog)
	if len(options) == 0 {
		return emptyResult(0, StatusInvalidCatalog)
	}

	items, err := ParseQuantity(quantity, r.maxQuantity)
	if err != nil {
		return emptyResult(0, StatusInvalidQuantity)
	}

	sizes := make([]int, len(options))
	for i, opt := range options {
		sizes[i] = opt.Size
	}

	var counts []int
	switch r.policy {
	case PolicyFewestPacks:
		counts = fewestPacks(options, items)
	default:
		var exhausted bool
		counts, exhausted = firstFound(sizes, items, r.budget(sizes, items))
		if exhausted {
			counts = fewestPacks(options, items)
		}
	}
	if counts == nil {
		return emptyResult(items, StatusUnfulfillable)
	}

	packs := make([]ChosenPack, 0, len(options))
	for i, opt := range options {
		if counts[i] == 0 {
			continue
		}
		packs = append(packs, ChosenPack{
			Size:      opt.Size,
			Count:     counts[i],
			UnitPrice: opt.UnitPrice,
		})
	}
	return newResult(items, packs)
}

// budget caps first-found iterations at a multiple of the deepest possible
// walk: one step per pack of the smallest size, per size.
func (r *Resolver) budget(sizes []int, items int) int {
	smallest := sizes[len(sizes)-1]
	perSize := items/smallest + 1
	limit := r.searchFactor * len(sizes)
	if perSize > maxBudget/limit {
		return maxBudget
	}
	return perSize * limit
}

// normalizeCatalog drops invalid options and duplicate sizes (first one
// wins) and orders the rest by size, largest first.
func normalizeCatalog(catalog Catalog) []PackOption {
	seen := make(map[int]struct{}, len(catalog))
	out := make([]PackOption, 0, len(catalog))
	for _, opt := range catalog {
		if !opt.Valid() {
			continue
		}
		if _, dup := seen[opt.Size]; dup {
			continue
		}
		seen[opt.Size] = struct{}{}
		out = append(out, opt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Size > out[j].Size
	})
	return out
}
