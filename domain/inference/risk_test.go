package inference

import "testing"

func probThresholds() Thresholds {
	return Thresholds{
		Operator: OpGreaterOrEqual,
		Cuts: []TierCut{
			{Tier: TierCritical, Cut: 0.90},
			{Tier: TierWarning, Cut: 0.70},
		},
		Fallback: TierNormal,
	}
}

func rulThresholds() Thresholds {
	return Thresholds{
		Operator: OpLessThan,
		Cuts: []TierCut{
			{Tier: TierCritical, Cut: 50},
			{Tier: TierWarning, Cut: 100},
		},
		Fallback: TierNormal,
	}
}

func TestClassifyProbabilistic(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskTier
	}{
		{0.95, TierCritical},
		{0.90, TierCritical}, // boundary lands on the severe side
		{0.899999, TierWarning},
		{0.70, TierWarning},
		{0.69, TierNormal},
		{0.0, TierNormal},
	}
	th := probThresholds()
	for _, tc := range cases {
		if got := Classify(tc.score, th); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestClassifyInverted(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskTier
	}{
		{10, TierCritical},
		{49.9, TierCritical},
		{50, TierWarning}, // lt is strict, 50 is not < 50
		{99.9, TierWarning},
		{100, TierNormal},
		{250, TierNormal},
	}
	th := rulThresholds()
	for _, tc := range cases {
		if got := Classify(tc.score, th); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	th := probThresholds()
	for i := 0; i < 100; i++ {
		if got := Classify(0.75, th); got != TierWarning {
			t.Fatalf("run %d: Classify(0.75) = %s, want WARNING", i, got)
		}
	}
}

func TestThresholdsValidateOrdering(t *testing.T) {
	bad := Thresholds{
		Operator: OpGreaterOrEqual,
		Cuts: []TierCut{
			{Tier: TierWarning, Cut: 0.70},
			{Tier: TierCritical, Cut: 0.90}, // must descend for gte
		},
		Fallback: TierNormal,
	}
	if err := bad.Validate(); err == nil {
		t.Error("expected ordering error for ascending gte cuts")
	}

	badLT := Thresholds{
		Operator: OpLessThan,
		Cuts: []TierCut{
			{Tier: TierWarning, Cut: 100},
			{Tier: TierCritical, Cut: 50}, // must ascend for lt
		},
		Fallback: TierNormal,
	}
	if err := badLT.Validate(); err == nil {
		t.Error("expected ordering error for descending lt cuts")
	}

	if err := probThresholds().Validate(); err != nil {
		t.Errorf("valid threshold set rejected: %v", err)
	}
}

func TestThresholdsTiersIncludesFallback(t *testing.T) {
	tiers := probThresholds().Tiers()
	if len(tiers) != 3 {
		t.Fatalf("got %d tiers, want 3", len(tiers))
	}
	if tiers[2] != TierNormal {
		t.Errorf("fallback tier missing, got %v", tiers)
	}
}
