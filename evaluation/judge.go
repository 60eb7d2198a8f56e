// Package evaluation maps scores to continue/stop decisions.
//
// A Backbone produces a raw score for some context; a Judge thresholds it.
// The same Judge serves "retry while the score is low" (Mode Leq) and
// "expand while the branch is promising" (Mode Geq).
package evaluation

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// Mode is the comparison applied by a Judge.
type Mode string

const (
	// Leq continues when value <= threshold.
	Leq Mode = "leq"
	// Geq continues when value >= threshold.
	Geq Mode = "geq"
)

// ParseMode returns the Mode named s.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Leq, Geq:
		return Mode(s), nil
	default:
		return "", goerr.Wrap(planlib.ErrUnsupportedMode, "unsupported threshold mode", goerr.V("mode", s))
	}
}

// Judge thresholds a score.
type Judge struct {
	Threshold float64
	Mode      Mode

	// Min and Max bound accepted scores. Both zero means [0, 1].
	Min float64
	Max float64
}

// NewJudge returns a Judge over the [0, 1] score range.
func NewJudge(threshold float64, mode Mode) Judge {
	return Judge{Threshold: threshold, Mode: mode, Min: 0, Max: 1}
}

// Evaluate reports whether the caller should continue. Scores outside the
// judge's range are a caller error and are not clamped.
func (j Judge) Evaluate(value float64) (bool, error) {
	lo, hi := j.Min, j.Max
	if lo == 0 && hi == 0 {
		hi = 1
	}
	if math.IsNaN(value) || value < lo || value > hi {
		return false, goerr.Wrap(planlib.ErrScoreOutOfRange, "score is out of range",
			goerr.V("value", value), goerr.V("min", lo), goerr.V("max", hi))
	}

	switch j.Mode {
	case Leq:
		return value <= j.Threshold, nil
	case Geq:
		return value >= j.Threshold, nil
	default:
		return false, goerr.Wrap(planlib.ErrUnsupportedMode, "unsupported threshold mode", goerr.V("mode", j.Mode))
	}
}

// Evaluate applies a [0, 1] Judge built from threshold and mode to value.
func Evaluate(value, threshold float64, mode Mode) (bool, error) {
	return NewJudge(threshold, mode).Evaluate(value)
}
