package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/go-faster/errors"
)

var (
	// ErrProductNotFound is returned when a product code is not in the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct is returned when a product has no code or no packs.
	ErrInvalidProduct = errors.New("product must have a code without spaces and at least one pack")
	// ErrDuplicateProduct is returned when a catalog lists the same code twice.
	ErrDuplicateProduct = errors.New("duplicate product code")
)

// Store provides access to the products orders are resolved against.
type Store interface {
	Lookup(code string) (Product, error)
	Products() []Product
	SetProduct(p Product) error
}

// MemoryStore keeps products in-memory and guards access with a RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewMemoryStore initialises a store with the default products.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{products: make(map[string]Product)}
	for _, p := range DefaultProducts() {
		s.products[p.Code] = p
	}
	return s
}

// Lookup returns a copy of the product with the given code.
func (s *MemoryStore) Lookup(code string) (Product, error) {
	code = strings.TrimSpace(code)

	s.mu.RLock()
	p, ok := s.products[code]
	s.mu.RUnlock()

	if !ok {
		return Product{}, errors.Wrapf(ErrProductNotFound, "lookup %q", code)
	}
	return p.clone(), nil
}

// Products returns copies of all products sorted by code.
func (s *MemoryStore) Products() []Product {
	s.mu.RLock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

// SetProduct validates and stores a product, replacing any with the same code.
func (s *MemoryStore) SetProduct(p Product) error {
	normalized, err := normalizeProduct(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.products[normalized.Code] = normalized
	s.mu.Unlock()

	return nil
}

// Replace swaps the whole product set atomically.
func (s *MemoryStore) Replace(products []Product) error {
	next := make(map[string]Product, len(products))
	for _, p := range products {
		normalized, err := normalizeProduct(p)
		if err != nil {
			return err
		}
		if _, dup := next[normalized.Code]; dup {
			return errors.Wrapf(ErrDuplicateProduct, "code %q", normalized.Code)
		}
		next[normalized.Code] = normalized
	}
	if len(next) == 0 {
		return errors.Wrap(ErrInvalidProduct, "catalog is empty")
	}

	s.mu.Lock()
	s.products = next
	s.mu.Unlock()

	return nil
}

func normalizeProduct(p Product) (Product, error) {
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	if p.Code == "" || strings.ContainsAny(p.Code, " \t\r\n") || len(p.Packs) == 0 {
		return Product{}, errors.Wrapf(ErrInvalidProduct, "code %q", p.Code)
	}
	return p.clone(), nil
}
