package inference

import "testing"

func TestDeriveMetricsActionIsTotal(t *testing.T) {
	d := StockoutDescriptor()
	row := NewCanonicalRow("P1")
	for _, tier := range d.Thresholds.Tiers() {
		m := DeriveMetrics(d, row, 0.5, tier)
		if m.RecommendedAction == "" {
			t.Errorf("tier %s yielded no recommended action", tier)
		}
	}
}

func TestDeriveMetricsExposure(t *testing.T) {
	d := StockoutDescriptor()
	row := NewCanonicalRow("P1")
	row.Numbers["price"] = 20
	row.Numbers["units_sold"] = 10

	m := DeriveMetrics(d, row, 0.5, TierHigh)
	if m.FinancialImpact != 100 {
		t.Errorf("impact = %v, want 100", m.FinancialImpact)
	}
}

func TestDeriveMetricsMissingExposureInputsDegradeToZero(t *testing.T) {
	d := StockoutDescriptor()
	row := NewCanonicalRow("P1")
	// Price healed to its default of zero during normalization.
	row.Numbers["price"] = 0
	row.Numbers["units_sold"] = 10

	m := DeriveMetrics(d, row, 0.9, TierCritical)
	if m.FinancialImpact != 0 {
		t.Errorf("impact with missing price = %v, want 0", m.FinancialImpact)
	}
}

func TestDeriveMetricsNoExposureSpec(t *testing.T) {
	d := SmartportDescriptor()
	row := NewCanonicalRow("V1")
	m := DeriveMetrics(d, row, 0.95, TierCritical)
	if m.FinancialImpact != 0 {
		t.Errorf("domain without exposure produced impact %v", m.FinancialImpact)
	}
	if m.RecommendedAction != d.Actions[TierCritical] {
		t.Errorf("action = %q, want %q", m.RecommendedAction, d.Actions[TierCritical])
	}
}
