// Package logging provides structured logging for the Bravia bridge.
//
// It wraps log/slog with configuration-driven level and format selection
// plus default service fields. Components take a narrow Logger interface
// of their own so they can be tested without a real logger; this package
// supplies the concrete implementation wired in main.
package logging
