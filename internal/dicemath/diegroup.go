package dicemath

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Bounds enforced at construction and parse time.
const (
	// MaxQuantity is the largest die count a single group may roll.
	MaxQuantity = 99
	// MaxSides is the largest face count a die may have.
	MaxSides = 100
	// MaxTotalDice bounds the aggregate die count across an Expression,
	// capping worst-case evaluation cost before it is incurred.
	MaxTotalDice = 1000
)

// KeepMode selects which end of a sorted roll a die group keeps.
type KeepMode int

const (
	// KeepNone sums every die rolled.
	KeepNone KeepMode = iota
	// KeepHighest sums only the top KeepCount dice.
	KeepHighest
	// KeepLowest sums only the bottom KeepCount dice.
	KeepLowest
)

// DieGroup is one NdS term with an optional keep filter, e.g. 4d6^3.
// Value semantics: construct once, never mutate.
//
// Invariant (from NewDieGroup): 1 <= Quantity <= MaxQuantity,
// 1 <= Sides <= MaxSides, and KeepCount <= Quantity when Keep != KeepNone.
type DieGroup struct {
	Quantity  int
	Sides     int
	Keep      KeepMode
	KeepCount int
}

// NewDieGroup validates and builds a DieGroup.
//
// Postcondition: returns a group satisfying the type invariant, or an
// error; a keep count above quantity reports ErrTooManyKept.
func NewDieGroup(quantity, sides int, keep KeepMode, keepCount int) (DieGroup, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return DieGroup{}, fmt.Errorf("dicemath: quantity must be 1-%d, got %d", MaxQuantity, quantity)
	}
	if sides < 1 || sides > MaxSides {
		return DieGroup{}, fmt.Errorf("dicemath: sides must be 1-%d, got %d", MaxSides, sides)
	}
	switch keep {
	case KeepNone:
		keepCount = 0
	case KeepHighest, KeepLowest:
		if keepCount < 1 {
			return DieGroup{}, fmt.Errorf("dicemath: keep count must be >= 1, got %d", keepCount)
		}
		if keepCount > quantity {
			return DieGroup{}, fmt.Errorf("dicemath: keep %d of %d dice: %w", keepCount, quantity, ErrTooManyKept)
		}
	default:
		return DieGroup{}, fmt.Errorf("dicemath: unknown keep mode %d", keep)
	}
	return DieGroup{Quantity: quantity, Sides: sides, Keep: keep, KeepCount: keepCount}, nil
}

func (g DieGroup) isComponent() {}

// String renders the canonical NdS form plus the vK/^K suffix when a keep
// filter is set.
func (g DieGroup) String() string {
	base := fmt.Sprintf("%dd%d", g.Quantity, g.Sides)
	switch g.Keep {
	case KeepHighest:
		return fmt.Sprintf("%s^%d", base, g.KeepCount)
	case KeepLowest:
		return fmt.Sprintf("%sv%d", base, g.KeepCount)
	}
	return base
}

// Low is the minimum possible contribution: every die shows 1, collapsed
// through the keep filter.
func (g DieGroup) Low() int {
	if g.Keep == KeepNone {
		return g.Quantity
	}
	return g.KeepCount
}

// High is the maximum possible contribution: every die shows Sides,
// collapsed through the keep filter.
func (g DieGroup) High() int {
	if g.Keep == KeepNone {
		return g.Quantity * g.Sides
	}
	return g.KeepCount * g.Sides
}

// keepBounds translates the keep filter into the (keepLow, keepHigh) pair
// the analytic dispatch works in: an unfiltered group spans (0, Quantity).
func (g DieGroup) keepBounds() (keepLow, keepHigh int) {
	switch g.Keep {
	case KeepHighest:
		return 0, g.KeepCount
	case KeepLowest:
		return g.KeepCount, g.Quantity
	}
	return 0, g.Quantity
}

// EV returns the exact expected contribution of the group, computed
// combinatorially rather than by sampling. A nil analyzer uses the
// package-wide shared cache.
func (g DieGroup) EV(a *Analyzer) float64 {
	if a == nil {
		a = sharedAnalyzer
	}
	low, high := g.keepBounds()
	return a.AnalyticEV(g.Quantity, g.Sides, low, high)
}

// Roll draws Quantity dice from src and returns the keep-filtered sum.
//
// Postcondition: Low() <= result <= High().
func (g DieGroup) Roll(src Source) int {
	rolled := g.draw(src)
	return sum(g.filter(rolled))
}

// VerboseRoll draws fresh dice and returns the keep-filtered total along
// with an audit string showing the raw dice in roll order, the kept
// subset when a filter applies, and the group total, e.g.
//
//	"4d6^3 (3, 1, 4, 1) -> Highest 3 (1, 3, 4) -> (8)"
func (g DieGroup) VerboseRoll(src Source) (int, string) {
	rolled := g.draw(src)
	kept := g.filter(rolled)
	total := sum(kept)

	parts := []string{fmt.Sprintf("%dd%d (%s)", g.Quantity, g.Sides, joinInts(rolled))}
	switch g.Keep {
	case KeepHighest:
		parts = append(parts, fmt.Sprintf("-> Highest %d (%s)", g.KeepCount, joinInts(kept)))
	case KeepLowest:
		parts = append(parts, fmt.Sprintf("-> Lowest %d (%s)", g.KeepCount, joinInts(kept)))
	}
	parts = append(parts, fmt.Sprintf("-> (%d)", total))
	return total, strings.Join(parts, " ")
}

// draw samples Quantity independent uniform values in [1, Sides].
func (g DieGroup) draw(src Source) []int {
	rolled := make([]int, g.Quantity)
	for i := range rolled {
		rolled[i] = src.Intn(g.Sides) + 1
	}
	return rolled
}

// filter applies the keep filter: sort ascending, slice the configured
// end. The input slice is not modified. With KeepNone the input is
// returned as-is.
func (g DieGroup) filter(rolled []int) []int {
	if g.Keep == KeepNone {
		return rolled
	}
	sorted := make([]int, len(rolled))
	copy(sorted, rolled)
	sort.Ints(sorted)
	if g.Keep == KeepHighest {
		return sorted[len(sorted)-g.KeepCount:]
	}
	return sorted[:g.KeepCount]
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
