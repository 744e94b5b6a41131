package dicemath

import (
	"errors"
	"fmt"
)

// Sentinel errors for every way a dice expression can be rejected. All of
// them are user-input-class: the string was malformed or exceeded a
// resource bound, never an internal fault.
var (
	// ErrTooManyDice indicates the aggregate die count across the whole
	// expression exceeds MaxTotalDice.
	ErrTooManyDice = errors.New("too many dice in expression")

	// ErrTooManyKept indicates a die group keeps more dice than it rolls.
	ErrTooManyKept = errors.New("cannot keep more dice than rolled")

	// ErrExpectedOperator indicates a value arrived where an operator was
	// required.
	ErrExpectedOperator = errors.New("expected an operator next")

	// ErrExpectedNumberOrDie indicates an operator or garbage arrived
	// where a value was required.
	ErrExpectedNumberOrDie = errors.New("expected a number or die next")

	// ErrIncomplete indicates the expression does not end on a value, so
	// evaluation is undefined.
	ErrIncomplete = errors.New("incomplete expression")

	// ErrInvalidToken indicates the head of the input matched neither a
	// value nor an operator.
	ErrInvalidToken = errors.New("invalid token")
)

// Error wraps one of the sentinel errors above together with the canonical
// string of the expression as parsed so far, so a caller can show the user
// exactly how far parsing got.
type Error struct {
	Err  error  // one of the package sentinels
	Expr string // canonical form of the partially built expression
}

// Error returns the sentinel message, annotated with the partial
// expression when one exists.
func (e *Error) Error() string {
	if e.Expr == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (current: %s)", e.Err, e.Expr)
}

// Unwrap returns the underlying sentinel so callers can use errors.Is.
func (e *Error) Unwrap() error { return e.Err }

// newError wraps sentinel err with the current canonical expression text.
func newError(err error, expr string) error {
	return &Error{Err: err, Expr: expr}
}
