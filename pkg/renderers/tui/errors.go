package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoLayout is returned when RenderOptions carry no layout to rebuild
	// the plan from after edits.
	ErrNoLayout = errors.New("tui: render options carry no layout")
)
