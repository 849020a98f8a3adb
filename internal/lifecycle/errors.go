// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPhase means the requested target is not one of the six phases.
	ErrInvalidPhase = errors.New("invalid phase")
	// ErrIllegalTransition means the target is not the successor of the current phase.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrScenarioNotFound means no controller is registered under the given id.
	ErrScenarioNotFound = errors.New("scenario not found")
)

// TransitionError carries the context of a rejected transition request.
type TransitionError struct {
	Kind   error
	From   Phase
	Target string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: from=%s target=%q", e.Kind, e.From, e.Target)
}

func (e *TransitionError) Unwrap() error { return e.Kind }
