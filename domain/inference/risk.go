package inference

import "fmt"

// ThresholdOp selects the boundary operator a domain's threshold set uses.
// Probabilistic classifiers rank severity upward (score >= cut), RUL-style
// regressors rank it downward (score < cut).
type ThresholdOp string

const (
	OpGreaterOrEqual ThresholdOp = "gte"
	OpLessThan       ThresholdOp = "lt"
)

// TierCut is one ordered threshold boundary.
type TierCut struct {
	Tier RiskTier
	Cut  float64
}

// Thresholds is a domain's ordered threshold set. Cuts are evaluated top-down
// starting from the most severe tier, so every score maps to exactly one tier
// and boundary values land on the severe side (0.80 with "CRITICAL >= 0.80"
// is CRITICAL, not HIGH).
type Thresholds struct {
	Operator ThresholdOp
	Cuts     []TierCut
	Fallback RiskTier
}

// Classify maps a continuous score to a discrete risk tier. Pure: same score
// and threshold set always yields the same tier.
func Classify(score float64, t Thresholds) RiskTier {
	for _, cut := range t.Cuts {
		switch t.Operator {
		case OpLessThan:
			if score < cut.Cut {
				return cut.Tier
			}
		default:
			if score >= cut.Cut {
				return cut.Tier
			}
		}
	}
	return t.Fallback
}

// Tiers returns every tier the threshold set can produce, fallback included.
func (t Thresholds) Tiers() []RiskTier {
	tiers := make([]RiskTier, 0, len(t.Cuts)+1)
	for _, cut := range t.Cuts {
		tiers = append(tiers, cut.Tier)
	}
	return append(tiers, t.Fallback)
}

// Validate checks the threshold set is ordered and well-formed.
func (t Thresholds) Validate() error {
	if len(t.Cuts) == 0 {
		return fmt.Errorf("threshold set needs at least one cut")
	}
	if t.Fallback == "" {
		return fmt.Errorf("threshold set needs a fallback tier")
	}
	for i := 1; i < len(t.Cuts); i++ {
		prev, cur := t.Cuts[i-1].Cut, t.Cuts[i].Cut
		switch t.Operator {
		case OpLessThan:
			if cur <= prev {
				return fmt.Errorf("lt cuts must ascend: %v before %v", prev, cur)
			}
		default:
			if cur >= prev {
				return fmt.Errorf("gte cuts must descend: %v before %v", prev, cur)
			}
		}
	}
	return nil
}
