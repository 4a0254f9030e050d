package inference

// DeriveMetrics computes the secondary business metrics for one scored row.
// Side-effect-free. Missing formula inputs were already healed to zero during
// normalization, so exposure degrades to zero instead of propagating nulls.
func DeriveMetrics(d Descriptor, row CanonicalRow, score float64, tier RiskTier) DerivedMetrics {
	m := DerivedMetrics{
		// Actions is validated total over tiers at registration.
		RecommendedAction: d.Actions[tier],
	}
	if d.Exposure != nil {
		price := row.Number(d.Exposure.PriceColumn)
		velocity := row.Number(d.Exposure.VelocityColumn)
		m.FinancialImpact = score * price * velocity
	}
	return m
}
