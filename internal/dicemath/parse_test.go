package dicemath_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/dicetower/internal/dicemath"
)

// TestParse_Canonicalization: parsing succeeds and String() reproduces
// the canonical spaced form.
func TestParse_Canonicalization(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"3d6+2", "3d6 + 2"},
		{"3d6 + 2", "3d6 + 2"},
		{"  3d6+2  ", "3d6 + 2"},
		{"4d8v2-1", "4d8v2 - 1"},
		{"4d6^3", "4d6^3"},
		{"1d100", "1d100"},
		{"99d100^99", "99d100^99"},
		{"7", "7"},
		{"2d6+1d8-3", "2d6 + 1d8 - 3"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			e, err := dicemath.Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.String())
		})
	}
}

// TestParse_Rejections covers the error taxonomy for malformed input.
func TestParse_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", dicemath.ErrIncomplete},
		{"blank", "   ", dicemath.ErrIncomplete},
		{"missing quantity", "d6", dicemath.ErrExpectedNumberOrDie},
		{"zero quantity", "0d6", dicemath.ErrExpectedNumberOrDie},
		{"garbage", "xyz", dicemath.ErrExpectedNumberOrDie},
		{"leading operator", "+3d6", dicemath.ErrExpectedNumberOrDie},
		{"keep exceeds quantity", "3d6v5", dicemath.ErrTooManyKept},
		{"keep highest exceeds quantity", "2d20^3", dicemath.ErrTooManyKept},
		{"three digit quantity", "101d6", dicemath.ErrIncomplete},
		{"sides above 100", "3d101", dicemath.ErrIncomplete},
		{"zero sides", "3d0", dicemath.ErrIncomplete},
		{"juxtaposed values", "3d6 3d6", dicemath.ErrIncomplete},
		{"operator expected garbage", "3d6 x", dicemath.ErrIncomplete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dicemath.Parse(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// TestParse_TrailingOperatorIsLenient: "3d6+" parses, but every
// evaluation of the result reports ErrIncomplete. Lenient parse, strict
// evaluate.
func TestParse_TrailingOperatorIsLenient(t *testing.T) {
	e, err := dicemath.Parse("3d6+")
	require.NoError(t, err, "a trailing operator must not fail at parse time")

	src := dicemath.NewSeededSource(1)
	_, err = e.Roll(src)
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)
	_, _, err = e.VerboseRoll(src)
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)
	_, err = e.Min()
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)
	_, err = e.Max()
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)
	_, err = e.EV(nil)
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)

	// The defect is stable: the expression stays reusable and the error
	// recurs without corrupting anything.
	_, err = e.Roll(src)
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)
}

// TestParse_ErrorCarriesPartialExpression: errors expose how far parsing
// got through the canonical partial form.
func TestParse_ErrorCarriesPartialExpression(t *testing.T) {
	_, err := dicemath.Parse("3d6+x")
	require.Error(t, err)

	var de *dicemath.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, dicemath.ErrExpectedNumberOrDie, de.Err)
	assert.Equal(t, "3d6 +", de.Expr)
	assert.Contains(t, err.Error(), "3d6 +")
}

// TestParse_DiceCeiling: quantities summing to exactly MaxTotalDice
// parse; one die more is rejected with ErrTooManyDice.
func TestParse_DiceCeiling(t *testing.T) {
	// 10 x 99d6 + 10d6 = 1000 dice.
	parts := make([]string, 0, 11)
	for i := 0; i < 10; i++ {
		parts = append(parts, "99d6")
	}
	atLimit := strings.Join(append(parts, "10d6"), "+")
	e, err := dicemath.Parse(atLimit)
	require.NoError(t, err, "exactly %d dice must parse", dicemath.MaxTotalDice)

	low, err := e.Min()
	require.NoError(t, err)
	assert.Equal(t, 1000, low)

	overLimit := strings.Join(append(parts, "11d6"), "+")
	_, err = dicemath.Parse(overLimit)
	assert.ErrorIs(t, err, dicemath.ErrTooManyDice)
}

// TestParse_SuffixWithoutCountLeftUnconsumed: a dangling keep marker is
// not part of the die group, so the leftover bytes fail the operator
// phase.
func TestParse_SuffixWithoutCountLeftUnconsumed(t *testing.T) {
	_, err := dicemath.Parse("3d6v")
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)

	_, err = dicemath.Parse("3d6v0")
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)
}

// TestExpression_ProgressiveConstruction exercises the add-time
// alternation checks that Parse can never trip on its own.
func TestExpression_ProgressiveConstruction(t *testing.T) {
	e := dicemath.NewExpression()

	err := e.AddOperator(dicemath.OpAdd)
	assert.ErrorIs(t, err, dicemath.ErrExpectedNumberOrDie, "operator first must be rejected")

	require.NoError(t, e.AddLiteral(5))
	err = e.AddLiteral(3)
	assert.ErrorIs(t, err, dicemath.ErrExpectedOperator, "value after value must be rejected")

	require.NoError(t, e.AddOperator(dicemath.OpSub))
	err = e.AddOperator(dicemath.OpAdd)
	assert.ErrorIs(t, err, dicemath.ErrExpectedNumberOrDie, "operator after operator must be rejected")

	g, err := dicemath.NewDieGroup(2, 6, dicemath.KeepNone, 0)
	require.NoError(t, err)
	require.NoError(t, e.AddGroup(g))
	assert.Equal(t, "5 - 2d6", e.String())
}

// TestNewDieGroup_Validation covers construction bounds directly.
func TestNewDieGroup_Validation(t *testing.T) {
	_, err := dicemath.NewDieGroup(0, 6, dicemath.KeepNone, 0)
	assert.Error(t, err)
	_, err = dicemath.NewDieGroup(100, 6, dicemath.KeepNone, 0)
	assert.Error(t, err)
	_, err = dicemath.NewDieGroup(3, 0, dicemath.KeepNone, 0)
	assert.Error(t, err)
	_, err = dicemath.NewDieGroup(3, 101, dicemath.KeepNone, 0)
	assert.Error(t, err)
	_, err = dicemath.NewDieGroup(3, 6, dicemath.KeepHighest, 0)
	assert.Error(t, err)
	_, err = dicemath.NewDieGroup(3, 6, dicemath.KeepHighest, 4)
	assert.ErrorIs(t, err, dicemath.ErrTooManyKept)

	g, err := dicemath.NewDieGroup(4, 6, dicemath.KeepHighest, 3)
	require.NoError(t, err)
	assert.Equal(t, "4d6^3", g.String())
	assert.Equal(t, 3, g.Low())
	assert.Equal(t, 18, g.High())
}

// TestParse_EmptyExpressionEvaluationFails: a hand-built empty expression
// is legal to hold but refuses evaluation, matching the lenient-build
// policy.
func TestParse_EmptyExpressionEvaluationFails(t *testing.T) {
	e := dicemath.NewExpression()
	assert.Equal(t, "", e.String())
	_, err := e.Roll(dicemath.NewSeededSource(1))
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)
	_, err = e.EV(nil)
	assert.ErrorIs(t, err, dicemath.ErrIncomplete)
}

// TestParse_RoundTrip: the canonical form of a parsed expression parses
// again to the same canonical form.
func TestParse_RoundTrip(t *testing.T) {
	for _, input := range []string{"3d6+2", "4d6^3-1d4+7", "10d10v3 - 2"} {
		t.Run(input, func(t *testing.T) {
			e, err := dicemath.Parse(input)
			require.NoError(t, err)
			again, err := dicemath.Parse(e.String())
			require.NoError(t, err)
			assert.Equal(t, e.String(), again.String(),
				fmt.Sprintf("canonical form of %q must round-trip", input))
		})
	}
}
