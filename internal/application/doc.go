// Package application wires the catalog store, resolver, order processor,
// metrics recorder and HTTP router into a runnable App so that the main
// package only deals with CLI parsing and orchestration.
package application
