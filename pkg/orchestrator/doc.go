// Package orchestrator wires layout lookup, validation, plan building and
// rendering behind a single entry point.
package orchestrator
