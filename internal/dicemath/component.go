package dicemath

import "strconv"

// component is the closed set of things that may appear in an Expression:
// an integer literal, a die group, or an operator. Keeping the set sealed
// lets evaluation switch exhaustively over the three cases.
type component interface {
	String() string
	isComponent()
}

// Literal is a flat integer term.
type Literal int

func (l Literal) String() string { return strconv.Itoa(int(l)) }
func (Literal) isComponent()     {}

// Operator is a binary operator between two terms. Only addition and
// subtraction exist, so there is a single precedence level and evaluation
// is a plain left-to-right fold.
type Operator int

const (
	// OpAdd adds the next term to the running total.
	OpAdd Operator = iota
	// OpSub subtracts the next term from the running total.
	OpSub
)

func (o Operator) String() string {
	if o == OpSub {
		return "-"
	}
	return "+"
}

func (Operator) isComponent() {}

// apply folds b into a.
func (o Operator) apply(a, b int) int {
	if o == OpSub {
		return a - b
	}
	return a + b
}

// applyFloat folds b into a for the analytic (EV) path.
func (o Operator) applyFloat(a, b float64) float64 {
	if o == OpSub {
		return a - b
	}
	return a + b
}

// operatorFor maps an input byte to its Operator.
func operatorFor(c byte) (Operator, bool) {
	switch c {
	case '+':
		return OpAdd, true
	case '-':
		return OpSub, true
	}
	return 0, false
}
