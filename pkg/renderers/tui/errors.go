package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a field is still invalid after the
	// configured number of prompts.
	ErrTooManyAttempts = errors.New("tui: too many invalid answers")
	// ErrNoOptions is returned when a choice field has nothing to select.
	ErrNoOptions = errors.New("tui: choice field has no options")
)
