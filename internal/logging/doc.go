// Package logging assembles structured slog loggers used across bagger.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so plugin code tags log lines
// with node IDs, plugin names, and run correlation IDs. NewNop provides a
// discard logger for tests and wiring code that cannot fail.
package logging
