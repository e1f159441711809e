// Package logging wires log/slog with the repository's console and JSON
// handlers, standardized attribute keys, and context-derived correlation
// fields.
package logging
