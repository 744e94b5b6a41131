package dicemath

import (
	"math"
	"math/big"
	"sync"
)

// Analyzer computes exact expected values for keep-filtered dice sums and
// memoizes every intermediate result. Keys are small-cardinality tuples
// (quantity <= MaxTotalDice, sides <= MaxSides, keep <= quantity), so the
// caches grow to at most a few million entries in the worst case; a single
// shared Analyzer is the expected deployment.
//
// Invariant: every cached value is a pure function of its key, so a racing
// recompute of the same key is harmless. The mutex only guards map access,
// never computation.
type Analyzer struct {
	mu      sync.Mutex
	binom   map[[2]int]float64
	weights map[[4]int]float64
	evs     map[evKey]float64
}

type evKey struct {
	quantity, sides, keep int
	best                  bool
}

// NewAnalyzer returns an empty Analyzer ready for use by any number of
// goroutines.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		binom:   make(map[[2]int]float64),
		weights: make(map[[4]int]float64),
		evs:     make(map[evKey]float64),
	}
}

// sharedAnalyzer backs the nil-Analyzer convenience path on Expression
// and DieGroup.
var sharedAnalyzer = NewAnalyzer()

// Binomial returns C(n, r) as a float64, or 0 when r is outside [0, n].
//
// The coefficient is computed exactly in integer arithmetic first
// (math/big, so C(1000, 500) does not overflow) and converted to float64
// once, at the final step. This is a deliberate choice over incremental
// floating-point division: it keeps EV results bit-identical across calls
// and loses precision only in the single final rounding.
func (a *Analyzer) Binomial(n, r int) float64 {
	if r < 0 || r > n {
		return 0
	}
	key := [2]int{n, r}
	a.mu.Lock()
	v, ok := a.binom[key]
	a.mu.Unlock()
	if ok {
		return v
	}

	var b big.Int
	b.Binomial(int64(n), int64(r))
	v, _ = new(big.Float).SetInt(&b).Float64()

	a.mu.Lock()
	a.binom[key] = v
	a.mu.Unlock()
	return v
}

// weight is the order-statistic building block: the probability mass that
// exactly i of quantity dice land at or above face j, expressed as the
// telescoping difference between the ">= j" and ">= j+1" binomial CDFs of
// a single uniform die.
func (a *Analyzer) weight(quantity, sides, i, j int) float64 {
	key := [4]int{quantity, sides, i, j}
	a.mu.Lock()
	v, ok := a.weights[key]
	a.mu.Unlock()
	if ok {
		return v
	}

	s := float64(sides)
	fj := float64(j)
	x := math.Pow((s-fj)/s, float64(i)) * math.Pow(fj/s, float64(quantity-i))
	y := math.Pow((s-fj+1)/s, float64(i)) * math.Pow((fj-1)/s, float64(quantity-i))
	v = a.Binomial(quantity, i) * (x - y)

	a.mu.Lock()
	a.weights[key] = v
	a.mu.Unlock()
	return v
}

// EVKeepBest returns the exact expected sum of the keep highest dice out
// of quantity rolls of a sides-sided die.
//
// Precondition: 1 <= keep <= quantity, sides >= 1. Violations are a
// programming error, not a recoverable condition.
func (a *Analyzer) EVKeepBest(quantity, sides, keep int) float64 {
	return a.ev(evKey{quantity, sides, keep, true})
}

// EVKeepWorst returns the exact expected sum of the keep lowest dice out
// of quantity rolls of a sides-sided die.
//
// Precondition: 1 <= keep <= quantity, sides >= 1.
func (a *Analyzer) EVKeepWorst(quantity, sides, keep int) float64 {
	return a.ev(evKey{quantity, sides, keep, false})
}

func (a *Analyzer) ev(key evKey) float64 {
	a.mu.Lock()
	v, ok := a.evs[key]
	a.mu.Unlock()
	if ok {
		return v
	}

	if key.best {
		v = a.evKeepBest(key.quantity, key.sides, key.keep)
	} else {
		v = a.evKeepWorst(key.quantity, key.sides, key.keep)
	}

	a.mu.Lock()
	a.evs[key] = v
	a.mu.Unlock()
	return v
}

// evKeepBest sums, for each of the keep highest ranks, the expected value
// of that order statistic: face value j weighted by the mass of draws
// where at most k dice sit at or above j.
func (a *Analyzer) evKeepBest(quantity, sides, keep int) float64 {
	total := 0.0
	for k := 0; k < keep; k++ {
		rank := 0.0
		for j := 1; j <= sides; j++ {
			mass := 0.0
			for i := 0; i <= k; i++ {
				mass += a.weight(quantity, sides, i, j)
			}
			rank += float64(j) * mass
		}
		total += rank
	}
	return total
}

// evKeepWorst mirrors evKeepBest from the other end of the sorted draw.
func (a *Analyzer) evKeepWorst(quantity, sides, keep int) float64 {
	total := 0.0
	for k := 1; k <= keep; k++ {
		rank := 0.0
		for j := 1; j <= sides; j++ {
			mass := 0.0
			for i := 0; i <= quantity-k; i++ {
				mass += a.weight(quantity, sides, i, j)
			}
			rank += float64(j) * mass
		}
		total += rank
	}
	return total
}

// AnalyticEV dispatches on the keep bounds produced by a DieGroup:
// keepHigh below quantity is a keep-highest filter, a positive keepLow is
// a keep-lowest filter, and anything else is an unfiltered sum with the
// closed-form mean quantity*(sides+1)/2.
func (a *Analyzer) AnalyticEV(quantity, sides, keepLow, keepHigh int) float64 {
	if keepHigh < quantity {
		return a.EVKeepBest(quantity, sides, keepHigh)
	}
	if keepLow > 0 {
		return a.EVKeepWorst(quantity, sides, keepLow)
	}
	return float64(quantity) * float64(sides+1) / 2
}
