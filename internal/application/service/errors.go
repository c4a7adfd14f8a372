package service

import (
	"errors"
	"fmt"
)

// ErrManagerRequired is the named precondition raised when a submitter has no
// resolvable manager assignment. It is surfaced verbatim so the UI can direct
// the user to remediate, distinct from generic validation failures.
var ErrManagerRequired = errors.New("manager required")

// ErrNotFound is returned when a commission request or draw does not exist.
var ErrNotFound = errors.New("not found")

// AuthorizationError means the actor lacks the capability for the attempted
// action. It is raised before any state mutation is attempted.
type AuthorizationError struct {
	ActorID string
	Action  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s is not permitted to %s", e.ActorID, e.Action)
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
