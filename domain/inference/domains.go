package inference

import "fmt"

// Built-in domain names.
const (
	DomainSmartport = "smartport"
	DomainTurbofan  = "turbofan"
	DomainStockout  = "stockout"
)

// BuiltinRegistry returns a registry loaded with the three shipped domains.
func BuiltinRegistry() (*Registry, error) {
	registry := NewRegistry()
	for _, d := range []Descriptor{SmartportDescriptor(), TurbofanDescriptor(), StockoutDescriptor()} {
		if err := registry.Register(d); err != nil {
			return nil, fmt.Errorf("register %s: %w", d.Name, err)
		}
	}
	return registry, nil
}

// SmartportDescriptor configures the vessel delay-risk domain: a probability
// classifier over port-call telemetry, insert-only persistence into the
// alerts table.
func SmartportDescriptor() Descriptor {
	return Descriptor{
		Name:             DomainSmartport,
		IDPrefix:         "SP",
		Table:            "smartport_alerts",
		IdentifierColumn: "vessel_id",
		RenameMap: map[string]string{
			"Vessel ID":       "vessel_id",
			"MMSI":            "vessel_id",
			"Vessel Name":     "vessel_name",
			"Speed (knots)":   "speed_knots",
			"SOG":             "speed_knots",
			"Prev Speed":      "prev_speed_knots",
			"Heading":         "heading_deg",
			"COG":             "heading_deg",
			"Prev Heading":    "prev_heading_deg",
			"Wind Speed":      "wind_speed",
			"Wave Height":     "wave_height",
			"Berth Occupancy": "berth_occupancy",
			"Arrival Time":    "arrival_time",
			"ETA":             "arrival_time",
			"Cargo (tons)":    "cargo_tons",
		},
		NumericDefaults: map[string]float64{
			"speed_knots":      0,
			"prev_speed_knots": 0,
			"heading_deg":      0,
			"prev_heading_deg": 0,
			"wind_speed":       0,
			"wave_height":      0,
			"berth_occupancy":  0,
			"cargo_tons":       0,
		},
		LabelDefaults: map[string]string{
			"vessel_name": "Unknown",
		},
		TimeColumns: []string{"arrival_time"},
		DropColumns: []string{"delay_flag"},
		Features: []FeatureSpec{
			{Name: "speed_knots", Kind: FeatureNumeric, Source: "speed_knots"},
			{Name: "speed_delta", Kind: FeatureDelta, Source: "speed_knots", Second: "prev_speed_knots"},
			{Name: "heading_change", Kind: FeatureDelta, Source: "heading_deg", Second: "prev_heading_deg"},
			{Name: "wind_speed", Kind: FeatureNumeric, Source: "wind_speed"},
			{Name: "wave_height", Kind: FeatureNumeric, Source: "wave_height"},
			{Name: "berth_occupancy", Kind: FeatureNumeric, Source: "berth_occupancy"},
			{Name: "arrival_weekday", Kind: FeatureWeekday, Source: "arrival_time"},
			{Name: "arrival_is_weekend", Kind: FeatureWeekend, Source: "arrival_time"},
		},
		ContractVersion: "smartport-fc-3",
		ArtifactFile:    "smartport_model.json",
		Thresholds: Thresholds{
			Operator: OpGreaterOrEqual,
			Cuts: []TierCut{
				{Tier: TierCritical, Cut: 0.90},
				{Tier: TierWarning, Cut: 0.70},
			},
			Fallback: TierNormal,
		},
		Actions: map[RiskTier]string{
			TierCritical: "IMMEDIATE: Priority berthing & Tugboat standby.",
			TierWarning:  "PROACTIVE: Verify ETA and terminal capacity.",
			TierNormal:   "ROUTINE: Follow standard operations.",
		},
		ScoreName:     "mean_risk_score",
		ScoreColumn:   "risk_score",
		TierColumn:    "risk_level",
		HighRiskTiers: []RiskTier{TierCritical, TierWarning},
		BatchSize:     1000,
	}
}

// TurbofanDescriptor configures the engine remaining-useful-life domain: a
// regressor over whitespace-delimited sensor logs with a fixed headerless
// column order, upserting on (unit, cycle) so re-uploads supersede rows.
func TurbofanDescriptor() Descriptor {
	return Descriptor{
		Name:             DomainTurbofan,
		IDPrefix:         "TF",
		Table:            "turbofan_rul_predictions",
		IdentifierColumn: "unit_number",
		CycleColumn:      "time_in_cycles",
		RenameMap:        map[string]string{},
		NumericDefaults:  turbofanNumericDefaults(),
		LabelDefaults:    map[string]string{},
		HeaderlessColumns: func(width int) []string {
			cols := []string{"unit_number", "time_in_cycles", "op_setting_1", "op_setting_2", "op_setting_3"}
			for i := 1; i <= width-5; i++ {
				cols = append(cols, fmt.Sprintf("sensor_%d", i))
			}
			return cols
		},
		Features: []FeatureSpec{
			{Name: "time_in_cycles", Kind: FeatureNumeric, Source: "time_in_cycles"},
			{Name: "sensor_11", Kind: FeatureNumeric, Source: "sensor_11"},
			{Name: "sensor_4", Kind: FeatureNumeric, Source: "sensor_4"},
			{Name: "sensor_12", Kind: FeatureNumeric, Source: "sensor_12"},
			{Name: "sensor_7", Kind: FeatureNumeric, Source: "sensor_7"},
			{Name: "sensor_15", Kind: FeatureNumeric, Source: "sensor_15"},
			{Name: "sensor_21", Kind: FeatureNumeric, Source: "sensor_21"},
			{Name: "sensor_20", Kind: FeatureNumeric, Source: "sensor_20"},
		},
		ContractVersion: "turbofan-fc-2",
		ArtifactFile:    "turbofan_model.json",
		Thresholds: Thresholds{
			// Smaller predicted RUL means higher risk: inverted scale.
			Operator: OpLessThan,
			Cuts: []TierCut{
				{Tier: TierCritical, Cut: 50},
				{Tier: TierWarning, Cut: 100},
			},
			Fallback: TierNormal,
		},
		Actions: map[RiskTier]string{
			TierCritical: "IMMEDIATE: Schedule engine removal and shop visit.",
			TierWarning:  "PROACTIVE: Increase borescope inspection frequency.",
			TierNormal:   "ROUTINE: Continue standard maintenance interval.",
		},
		ScoreName:     "average_rul",
		ScoreColumn:   "predicted_rul",
		TierColumn:    "rul_category",
		HighRiskTiers: []RiskTier{TierCritical, TierWarning},
		BatchSize:     1000,
		ConflictKey:   []string{"unit_number", "time_in_cycles"},
	}
}

func turbofanNumericDefaults() map[string]float64 {
	defaults := map[string]float64{
		"time_in_cycles": 0,
		"op_setting_1":   0,
		"op_setting_2":   0,
		"op_setting_3":   0,
	}
	for i := 1; i <= 26; i++ {
		defaults[fmt.Sprintf("sensor_%d", i)] = 0
	}
	return defaults
}

// StockoutDescriptor configures the retail stockout-risk domain: a probability
// classifier over inventory snapshots with monetary-exposure derivation.
func StockoutDescriptor() Descriptor {
	return Descriptor{
		Name:             DomainStockout,
		IDPrefix:         "ST",
		Table:            "stockout_predictions",
		IdentifierColumn: "product_id",
		RenameMap: map[string]string{
			"Date":               "date",
			"Store ID":           "store_id",
			"Product ID":         "product_id",
			"Category":           "category",
			"Region":             "region",
			"Inventory Level":    "inventory_level",
			"Units Sold":         "units_sold",
			"Units Ordered":      "units_ordered",
			"Demand Forecast":    "demand_forecast",
			"Price":              "price",
			"Discount":           "discount",
			"Weather Condition":  "weather",
			"Holiday/Promotion":  "holiday_promo",
			"Competitor Pricing": "competitor_pricing",
			"Seasonality":        "seasonality",
		},
		NumericDefaults: map[string]float64{
			"inventory_level":    0,
			"units_sold":         0,
			"units_ordered":      0,
			"demand_forecast":    0,
			"price":              0,
			"discount":           0,
			"holiday_promo":      0,
			"competitor_pricing": 0,
		},
		LabelDefaults: map[string]string{
			"store_id":    "Unknown",
			"category":    "Unknown",
			"region":      "Unknown",
			"weather":     "Unknown",
			"seasonality": "Unknown",
		},
		TimeColumns: []string{"date"},
		DropColumns: []string{"stockout_14d"},
		Features: []FeatureSpec{
			{Name: "inventory_level", Kind: FeatureNumeric, Source: "inventory_level"},
			{Name: "units_sold", Kind: FeatureNumeric, Source: "units_sold"},
			{Name: "units_ordered", Kind: FeatureNumeric, Source: "units_ordered"},
			{Name: "demand_forecast", Kind: FeatureNumeric, Source: "demand_forecast"},
			{Name: "demand_gap", Kind: FeatureDelta, Source: "demand_forecast", Second: "inventory_level"},
			{Name: "price", Kind: FeatureNumeric, Source: "price"},
			{Name: "discount_ratio", Kind: FeatureRatio, Source: "discount", Second: "price"},
			{Name: "competitor_pricing", Kind: FeatureNumeric, Source: "competitor_pricing"},
			{Name: "holiday_promo", Kind: FeatureNumeric, Source: "holiday_promo"},
			{Name: "weather", Kind: FeatureCategorical, Source: "weather",
				Vocabulary: []string{"Sunny", "Cloudy", "Rainy", "Snowy"}},
			{Name: "seasonality", Kind: FeatureCategorical, Source: "seasonality",
				Vocabulary: []string{"Spring", "Summer", "Autumn", "Winter"}},
			{Name: "snapshot_weekday", Kind: FeatureWeekday, Source: "date"},
			{Name: "snapshot_is_weekend", Kind: FeatureWeekend, Source: "date"},
		},
		ContractVersion: "stockout-fc-5",
		ArtifactFile:    "stockout_model.json",
		Thresholds: Thresholds{
			Operator: OpGreaterOrEqual,
			Cuts: []TierCut{
				{Tier: TierCritical, Cut: 0.80},
				{Tier: TierHigh, Cut: 0.50},
				{Tier: TierMedium, Cut: 0.20},
			},
			Fallback: TierLow,
		},
		Actions: map[RiskTier]string{
			TierCritical: "IMMEDIATE: Emergency replenishment order.",
			TierHigh:     "URGENT: Expedite pending purchase orders.",
			TierMedium:   "PROACTIVE: Review reorder point and safety stock.",
			TierLow:      "ROUTINE: No action required.",
		},
		Exposure: &ExposureSpec{
			PriceColumn:    "price",
			VelocityColumn: "units_sold",
		},
		ScoreName:     "mean_risk_score",
		ScoreColumn:   "stockout_risk_score",
		TierColumn:    "risk_level",
		HighRiskTiers: []RiskTier{TierCritical, TierHigh},
		CarryColumns:  []string{"store_id"},
		BatchSize:     1000,
	}
}
