package recap

import "fmt"

// Threshold is a tagged context-size bound. Depending on Kind it is read as a
// turn count, an absolute size in estimator units, or a fraction of the
// service's maximum input size.
type Threshold struct {
	Kind  ThresholdKind `json:"kind"`
	Value float64       `json:"value"`
}

// Turns builds a turn-count threshold.
func Turns(n int) Threshold {
	return Threshold{Kind: ThresholdTurns, Value: float64(n)}
}

// Size builds an absolute-size threshold in estimator units.
func Size(n int) Threshold {
	return Threshold{Kind: ThresholdSize, Value: float64(n)}
}

// Fraction builds a threshold relative to the service's maximum input size.
func Fraction(f float64) Threshold {
	return Threshold{Kind: ThresholdFraction, Value: f}
}

// Validate checks that the threshold is well formed.
func (t Threshold) Validate() error {
	if !t.Kind.valid() {
		return fmt.Errorf("%w: unknown threshold kind %q", ErrInvalidConfig, t.Kind)
	}
	switch t.Kind {
	case ThresholdTurns, ThresholdSize:
		if t.Value < 1 {
			return fmt.Errorf("%w: %s threshold must be at least 1, got %v", ErrInvalidConfig, t.Kind, t.Value)
		}
	case ThresholdFraction:
		if t.Value <= 0 || t.Value > 1 {
			return fmt.Errorf("%w: fraction threshold must be in (0, 1], got %v", ErrInvalidConfig, t.Value)
		}
	}
	return nil
}

// isZero reports whether t is unset.
func (t Threshold) isZero() bool {
	return t.Kind == ""
}

// budget resolves the threshold to an absolute size budget in estimator
// units. ok is false when the threshold cannot resolve: fraction thresholds
// without a known max input size, and turn-count thresholds, which are not
// size budgets.
func (t Threshold) budget(maxInput int, haveMax bool) (budget int, ok bool) {
	switch t.Kind {
	case ThresholdSize:
		return int(t.Value), true
	case ThresholdFraction:
		if !haveMax {
			return 0, false
		}
		return int(t.Value * float64(maxInput)), true
	}
	return 0, false
}

// shouldCompact reports whether any configured trigger fires (logical OR).
// A trigger fires when its measurement reaches the threshold: turn count for
// "turns", estimated size scaled by the session's estimation multiplier for
// "size" and "fraction". Fraction triggers without a known max input size
// never fire. An empty trigger list never fires: compaction is opt-in.
func shouldCompact(turnCount, estimated int, multiplier float64, maxInput int, haveMax bool, triggers []Threshold) bool {
	adjusted := float64(estimated) * multiplier
	for _, tr := range triggers {
		switch tr.Kind {
		case ThresholdTurns:
			if float64(turnCount) >= tr.Value {
				return true
			}
		case ThresholdSize:
			if adjusted >= tr.Value {
				return true
			}
		case ThresholdFraction:
			if !haveMax {
				continue
			}
			if adjusted >= tr.Value*float64(maxInput) {
				return true
			}
		}
	}
	return false
}
