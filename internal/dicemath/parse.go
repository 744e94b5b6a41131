package dicemath

import (
	"errors"
	"strings"
)

// Parse converts raw dice notation into an Expression. Consumption is
// left-to-right in alternating phases: a value (die group or integer) is
// expected first, then an operator, and so on, with whitespace permitted
// between tokens.
//
// A die group is tried before a bare integer so that "3d6" is never read
// as the literal 3 followed by garbage (longest-match-first).
//
// Parsing is lenient about a trailing operator: "3d6 +" builds an
// Expression whose evaluation methods fail with ErrIncomplete. Empty
// input is rejected here, since there is nothing to evaluate at all.
// Every returned error wraps one of the package sentinels and carries the
// canonical form parsed so far.
func Parse(input string) (*Expression, error) {
	e := NewExpression()
	rest := strings.TrimSpace(input)

	for phase := 0; rest != ""; phase++ {
		if phase%2 == 1 {
			op, ok := operatorFor(rest[0])
			if !ok {
				// Input remains but no operator can start it.
				return nil, newError(ErrIncomplete, e.String())
			}
			if err := e.AddOperator(op); err != nil {
				return nil, err
			}
			rest = rest[1:]
		} else {
			var err error
			rest, err = parseValue(e, rest)
			if err != nil {
				return nil, err
			}
		}
		rest = strings.TrimSpace(rest)
	}

	if len(e.components) == 0 {
		return nil, newError(ErrIncomplete, e.String())
	}
	return e, nil
}

// parseValue consumes one value token from the head of s and appends it
// to e, returning the unconsumed remainder.
func parseValue(e *Expression, s string) (string, error) {
	if tok, rest, ok := scanDieGroup(s); ok {
		group, err := NewDieGroup(tok.quantity, tok.sides, tok.keep, tok.keepCount)
		if err != nil {
			if errors.Is(err, ErrTooManyKept) {
				return "", newError(ErrTooManyKept, e.String())
			}
			return "", err
		}
		return rest, e.AddGroup(group)
	}
	if n, rest, ok := scanBoundedInt(s, 3); ok {
		return rest, e.AddLiteral(n)
	}
	return "", newError(ErrExpectedNumberOrDie, e.String())
}

// dieToken holds the raw fields of a scanned die group before validation.
type dieToken struct {
	quantity  int
	sides     int
	keep      KeepMode
	keepCount int
}

// scanDieGroup matches digit{1,2} 'd' sides with an optional ('v'|'^')
// digit{1,3} suffix at the head of s. It validates shape only; range and
// keep-count checks belong to NewDieGroup. A suffix character without
// valid digits after it is left unconsumed for the next phase to reject.
func scanDieGroup(s string) (dieToken, string, bool) {
	quantity, rest, ok := scanBoundedInt(s, 2)
	if !ok || rest == "" || rest[0] != 'd' {
		return dieToken{}, s, false
	}
	sides, rest, ok := scanSides(rest[1:])
	if !ok {
		return dieToken{}, s, false
	}

	tok := dieToken{quantity: quantity, sides: sides, keep: KeepNone}
	if rest != "" && (rest[0] == 'v' || rest[0] == '^') {
		if count, after, ok := scanBoundedInt(rest[1:], 3); ok {
			if rest[0] == 'v' {
				tok.keep = KeepLowest
			} else {
				tok.keep = KeepHighest
			}
			tok.keepCount = count
			rest = after
		}
	}
	return tok, rest, true
}

// scanSides reads a side count: the literal "100", or one to two digits
// with a non-zero leading digit.
func scanSides(s string) (int, string, bool) {
	if strings.HasPrefix(s, "100") {
		return 100, s[3:], true
	}
	return scanBoundedInt(s, 2)
}

// scanBoundedInt reads at most maxDigits decimal digits with a non-zero
// leading digit. Digits beyond the bound are left unconsumed; the
// alternating phases reject them downstream, which is what caps die
// quantities at two digits.
func scanBoundedInt(s string, maxDigits int) (int, string, bool) {
	if s == "" || s[0] < '1' || s[0] > '9' {
		return 0, s, false
	}
	n := int(s[0] - '0')
	i := 1
	for i < len(s) && i < maxDigits && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:], true
}
