// Package resolver decides which packs fulfil an ordered quantity. Given a
// catalog of (size, price) options it returns the chosen packs and their
// total price. Resolution is a pure function of its inputs: there is no
// shared state, so a Resolver can be used from any number of goroutines.
//
// Invalid quantities, unusable catalogs and quantities that cannot be packed
// exactly all produce the same zero-priced empty result; its Status field
// tells them apart.
package resolver
