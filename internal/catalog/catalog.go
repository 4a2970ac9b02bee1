package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

// PackEntry is a pack as written in the catalog. Values are kept as text so
// that malformed entries survive loading and are dropped at resolution time.
type PackEntry struct {
	Size  string `yaml:"size" json:"size"`
	Price string `yaml:"price" json:"price"`
}

// Option converts the entry into a resolver option. ok is false when the
// size is not a positive integer or the price is not a non-negative number.
func (e PackEntry) Option() (opt resolver.PackOption, ok bool) {
	size, err := strconv.Atoi(strings.TrimSpace(e.Size))
	if err != nil || size <= 0 {
		return resolver.PackOption{}, false
	}
	price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
	if err != nil || price.IsNegative() {
		return resolver.PackOption{}, false
	}
	return resolver.PackOption{Size: size, UnitPrice: price}, true
}

// Product is a sellable item and the packs it comes in.
type Product struct {
	Code  string      `yaml:"code" json:"code"`
	Name  string      `yaml:"name" json:"name"`
	Packs []PackEntry `yaml:"packs" json:"packs"`
}

// Catalog returns the valid pack options of the product in catalog order.
func (p Product) Catalog() resolver.Catalog {
	out := make(resolver.Catalog, 0, len(p.Packs))
	for _, entry := range p.Packs {
		if opt, ok := entry.Option(); ok {
			out = append(out, opt)
		}
	}
	return out
}

// Invalid returns the entries that Catalog drops.
func (p Product) Invalid() []PackEntry {
	var out []PackEntry
	for _, entry := range p.Packs {
		if _, ok := entry.Option(); !ok {
			out = append(out, entry)
		}
	}
	return out
}

func (p Product) clone() Product {
	packs := make([]PackEntry, len(p.Packs))
	copy(packs, p.Packs)
	p.Packs = packs
	return p
}

var defaultProducts = []Product{
	{
		Code: "VS5",
		Name: "Vegemite Scroll",
		Packs: []PackEntry{
			{Size: "3", Price: "6.99"},
			{Size: "5", Price: "8.99"},
		},
	},
	{
		Code: "MB11",
		Name: "Blueberry Muffin",
		Packs: []PackEntry{
			{Size: "2", Price: "9.95"},
			{Size: "5", Price: "16.95"},
			{Size: "8", Price: "24.95"},
		},
	},
	{
		Code: "CF",
		Name: "Croissant",
		Packs: []PackEntry{
			{Size: "3", Price: "5.95"},
			{Size: "5", Price: "9.95"},
			{Size: "9", Price: "16.99"},
		},
	},
}

// DefaultProducts returns a copy of the built-in bakery catalog.
func DefaultProducts() []Product {
	out := make([]Product, len(defaultProducts))
	for i, p := range defaultProducts {
		out[i] = p.clone()
	}
	return out
}
