// Package logging assembles the structured slog loggers used across
// aircheck. It owns the console and JSON handlers, centralizes level and
// output plumbing, and provides component-tagged and no-op loggers so
// every subsystem emits lines with the same shape.
package logging
