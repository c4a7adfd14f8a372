package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the trigger is not permitted from
	// the current state, including any action against a terminal state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state value is not part of the
	// commission lifecycle.
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when a transition exists but its guard
	// rejected this particular firing.
	ErrGuardFailed = errors.New("guard condition failed")
)
