// Package logging builds the slog loggers used across recap.
//
// Two output formats are supported: a console handler that renders
// "timestamp LEVEL component: message key=value" lines for humans, and a
// JSON handler for machine consumption. Components never touch global
// logging state; they receive a *slog.Logger at construction time and
// derive scoped loggers with With.
package logging
