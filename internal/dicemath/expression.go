// Package dicemath parses and evaluates tabletop dice notation such as
// "3d6+2" or "4d8v2-1". Expressions can be rolled with any randomness
// Source, or analyzed exactly: deterministic minimum and maximum, and the
// expected value computed in closed form over order statistics rather
// than by simulation.
package dicemath

import (
	"fmt"
	"strings"
)

// Expression is an ordered component sequence alternating strictly
// between value slots (Literal or DieGroup) and Operator slots, beginning
// and ending on a value.
//
// Invariant: a non-empty sequence valid for evaluation has odd length.
// Alternation is enforced incrementally by the Add methods; the odd-length
// requirement is enforced by the evaluation methods (lenient build, strict
// evaluate), so components can be appended one at a time without
// lookahead.
//
// Invariant: the aggregate die count across all groups never exceeds
// MaxTotalDice; a group that would cross the ceiling is rejected at add
// time, not at roll time.
//
// Once built, an Expression may be evaluated any number of times and is
// never mutated by evaluation.
type Expression struct {
	components []component
	numDice    int
}

// NewExpression returns an empty Expression. Empty is legal to construct;
// only evaluation requires the odd-length invariant.
func NewExpression() *Expression {
	return &Expression{}
}

// String renders the canonical space-separated form, e.g. "3d6 + 2".
func (e *Expression) String() string {
	parts := make([]string, len(e.components))
	for i, c := range e.components {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// expectingValue reports whether the next slot is a value slot.
func (e *Expression) expectingValue() bool {
	return len(e.components)%2 == 0
}

// complete reports whether the sequence ends on a value component.
func (e *Expression) complete() bool {
	return len(e.components)%2 == 1
}

// AddLiteral appends a flat integer term.
//
// Postcondition: returns ErrExpectedOperator (wrapped with the current
// canonical form) when the last appended component was also a value.
func (e *Expression) AddLiteral(n int) error {
	if !e.expectingValue() {
		return newError(ErrExpectedOperator, e.String())
	}
	e.components = append(e.components, Literal(n))
	return nil
}

// AddGroup appends a die-group term, charging its quantity against the
// MaxTotalDice ceiling.
//
// Postcondition: returns ErrExpectedOperator on misplaced values and
// ErrTooManyDice when the aggregate count would exceed MaxTotalDice; the
// expression is unchanged on error.
func (e *Expression) AddGroup(g DieGroup) error {
	if !e.expectingValue() {
		return newError(ErrExpectedOperator, e.String())
	}
	if e.numDice+g.Quantity > MaxTotalDice {
		return newError(ErrTooManyDice, e.String())
	}
	e.numDice += g.Quantity
	e.components = append(e.components, g)
	return nil
}

// AddOperator appends a + or - between two value terms.
//
// Postcondition: returns ErrExpectedNumberOrDie when the sequence is
// empty or already ends on an operator.
func (e *Expression) AddOperator(op Operator) error {
	if e.expectingValue() {
		return newError(ErrExpectedNumberOrDie, e.String())
	}
	e.components = append(e.components, op)
	return nil
}

// Roll evaluates the expression with fresh random draws from src.
//
// Postcondition: Min() <= result <= Max() for the same expression.
// Returns ErrIncomplete when the sequence does not end on a value.
func (e *Expression) Roll(src Source) (int, error) {
	if !e.complete() {
		return 0, newError(ErrIncomplete, e.String())
	}
	total := 0
	op := OpAdd
	for _, c := range e.components {
		switch c := c.(type) {
		case Literal:
			total = op.apply(total, int(c))
		case DieGroup:
			total = op.apply(total, c.Roll(src))
		case Operator:
			op = c
		}
	}
	return total, nil
}

// VerboseRoll evaluates the expression like Roll but also builds a
// per-group audit trace: every die group reports its raw dice and
// filtered sum on its own line, and the trace ends with the grand total.
//
// Returns ErrIncomplete when the sequence does not end on a value.
func (e *Expression) VerboseRoll(src Source) (int, string, error) {
	if !e.complete() {
		return 0, "", newError(ErrIncomplete, e.String())
	}
	total := 0
	op := OpAdd
	var trace strings.Builder
	for _, c := range e.components {
		switch c := c.(type) {
		case Literal:
			total = op.apply(total, int(c))
			trace.WriteString(c.String())
		case DieGroup:
			amount, line := c.VerboseRoll(src)
			total = op.apply(total, amount)
			trace.WriteString(line)
		case Operator:
			op = c
			trace.WriteString("\n" + c.String() + " ")
		}
	}
	fmt.Fprintf(&trace, "\n-------------\n= %d", total)
	return total, trace.String(), nil
}

// Min returns the deterministic lower bound of the expression. When the
// pending operator is subtraction a group contributes its High instead of
// its Low: subtracting a range flips which bound minimizes the result.
//
// Returns ErrIncomplete when the sequence does not end on a value.
func (e *Expression) Min() (int, error) {
	return e.bound(func(g DieGroup, op Operator) int {
		if op == OpSub {
			return g.High()
		}
		return g.Low()
	})
}

// Max returns the deterministic upper bound of the expression, with the
// same sign-flip rule as Min.
//
// Returns ErrIncomplete when the sequence does not end on a value.
func (e *Expression) Max() (int, error) {
	return e.bound(func(g DieGroup, op Operator) int {
		if op == OpSub {
			return g.Low()
		}
		return g.High()
	})
}

func (e *Expression) bound(pick func(DieGroup, Operator) int) (int, error) {
	if !e.complete() {
		return 0, newError(ErrIncomplete, e.String())
	}
	total := 0
	op := OpAdd
	for _, c := range e.components {
		switch c := c.(type) {
		case Literal:
			total = op.apply(total, int(c))
		case DieGroup:
			total = op.apply(total, pick(c, op))
		case Operator:
			op = c
		}
	}
	return total, nil
}

// EV returns the exact expected value of the expression: the same
// left-to-right fold as Roll, with each die group contributing its
// analytic expectation instead of a sampled value. A nil analyzer uses
// the package-wide shared cache.
//
// Postcondition: repeated calls return bit-identical results.
// Returns ErrIncomplete when the sequence does not end on a value.
func (e *Expression) EV(a *Analyzer) (float64, error) {
	if !e.complete() {
		return 0, newError(ErrIncomplete, e.String())
	}
	total := 0.0
	op := OpAdd
	for _, c := range e.components {
		switch c := c.(type) {
		case Literal:
			total = op.applyFloat(total, float64(c))
		case DieGroup:
			total = op.applyFloat(total, c.EV(a))
		case Operator:
			op = c
		}
	}
	return total, nil
}
