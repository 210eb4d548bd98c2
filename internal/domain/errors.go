package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy roots. Every specific error below wraps exactly one of them so
// callers can branch with errors.Is on either level.
var (
	// ErrPrecondition is returned when an operation is not allowed in the current session state.
	ErrPrecondition = errors.New("precondition failed")
	// ErrValidation is returned for malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrDispatch is returned when the report dispatcher signals failure.
	ErrDispatch = errors.New("could not send report")
)

var (
	// ErrSessionNotFound is returned when a quiz session has not been created or has expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")

	// ErrAlreadyStarted is returned by Start outside NotStarted; the state is left untouched.
	ErrAlreadyStarted = fmt.Errorf("%w: quiz already started", ErrPrecondition)
	// ErrNotInProgress is returned by Select, Reveal and Advance outside InProgress.
	ErrNotInProgress = fmt.Errorf("%w: quiz is not in progress", ErrPrecondition)
	// ErrNoSelection blocks Advance and Reveal until the current question has a selection.
	ErrNoSelection = fmt.Errorf("%w: select an answer first", ErrPrecondition)
	// ErrNotCompleted is returned when a report is requested before the quiz finished.
	ErrNotCompleted = fmt.Errorf("%w: quiz is not completed", ErrPrecondition)

	// ErrChoiceOutOfRange indicates a choice index outside the current question's choices.
	ErrChoiceOutOfRange = fmt.Errorf("%w: choice out of range", ErrValidation)
	// ErrInvalidEmail indicates the recipient address failed the local shape check.
	ErrInvalidEmail = fmt.Errorf("%w: enter a valid email", ErrValidation)
	// ErrInvalidBank indicates a question bank that violates its invariants.
	ErrInvalidBank = fmt.Errorf("%w: invalid question bank", ErrValidation)
)

// ErrorKind classifies err into one of the taxonomy roots for presentation layers.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrBankNotFound):
		return "not_found"
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrDispatch):
		return "dispatch"
	default:
		return "internal"
	}
}
