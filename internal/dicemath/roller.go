package dicemath

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary holds the deterministic analysis of an expression.
type Summary struct {
	Min int
	Max int
	EV  float64
}

// Roller ties a Source, an Analyzer, and a logger together so every roll
// leaves an audit trail. Each evaluation is tagged with a fresh roll ID
// and logged at debug level with the canonical expression and result.
type Roller struct {
	src      Source
	analyzer *Analyzer
	logger   *zap.Logger
}

// NewRoller creates a Roller. A nil analyzer uses the package-wide shared
// cache.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, analyzer *Analyzer, logger *zap.Logger) *Roller {
	return &Roller{src: src, analyzer: analyzer, logger: logger}
}

// Roll parses input and evaluates a single roll.
func (r *Roller) Roll(input string) (int, error) {
	e, err := Parse(input)
	if err != nil {
		return 0, err
	}
	total, err := e.Roll(r.src)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("dice roll",
		zap.String("roll_id", uuid.NewString()),
		zap.String("expression", e.String()),
		zap.Int("total", total),
	)
	return total, nil
}

// VerboseRoll parses input and evaluates a roll with a per-group audit
// trace.
func (r *Roller) VerboseRoll(input string) (int, string, error) {
	e, err := Parse(input)
	if err != nil {
		return 0, "", err
	}
	total, trace, err := e.VerboseRoll(r.src)
	if err != nil {
		return 0, "", err
	}
	r.logger.Debug("verbose dice roll",
		zap.String("roll_id", uuid.NewString()),
		zap.String("expression", e.String()),
		zap.Int("total", total),
	)
	return total, trace, nil
}

// Describe parses input and returns its deterministic bounds and exact
// expected value without drawing any random numbers.
func (r *Roller) Describe(input string) (Summary, error) {
	e, err := Parse(input)
	if err != nil {
		return Summary{}, err
	}
	low, err := e.Min()
	if err != nil {
		return Summary{}, err
	}
	high, err := e.Max()
	if err != nil {
		return Summary{}, err
	}
	ev, err := e.EV(r.analyzer)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Min: low, Max: high, EV: ev}, nil
}
