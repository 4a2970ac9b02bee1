package resolver

import "errors"

var (
	// ErrInvalidQuantity is reported when the requested quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrQuantityTooLarge is reported when the quantity exceeds the resolver ceiling.
	ErrQuantityTooLarge = errors.New("quantity exceeds the configured maximum")
	// ErrInvalidCatalog is reported when the catalog has no usable pack options.
	ErrInvalidCatalog = errors.New("catalog must contain at least one pack with a positive size and non-negative price")
	// ErrCannotFulfill is reported when the quantity cannot be packed exactly.
	ErrCannotFulfill = errors.New("cannot pack quantity exactly with the available pack sizes")
	// ErrUnknownPolicy is returned by ParsePolicy for unrecognised names.
	ErrUnknownPolicy = errors.New("unknown resolution policy")
)
