package inference

import "time"

// Engineer produces the exact ordered feature vector the domain's model
// artifact expects. Pure and deterministic: no I/O, no clock reads, one input
// row always yields exactly one vector. The derivation rules re-declare the
// pre-processing baked into the artifact at training time and are versioned
// with it through Descriptor.ContractVersion.
func Engineer(d Descriptor, row CanonicalRow) FeatureVector {
	vec := make(FeatureVector, len(d.Features))
	for i, spec := range d.Features {
		vec[i] = deriveFeature(spec, row)
	}
	return vec
}

// EngineerAll featurizes a whole normalized dataset in input order.
func EngineerAll(d Descriptor, rows []CanonicalRow) []FeatureVector {
	vectors := make([]FeatureVector, len(rows))
	for i, row := range rows {
		vectors[i] = Engineer(d, row)
	}
	return vectors
}

func deriveFeature(spec FeatureSpec, row CanonicalRow) float64 {
	switch spec.Kind {
	case FeatureCategorical:
		return encodeLabel(spec.Vocabulary, row.Label(spec.Source))
	case FeatureWeekday:
		t := row.Time(spec.Source)
		if t.IsZero() {
			// Unparsable dates degrade to the "Unknown" weekday, never drop the row.
			return -1
		}
		return float64(t.Weekday())
	case FeatureWeekend:
		t := row.Time(spec.Source)
		if t.IsZero() {
			return 0
		}
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return 1
		}
		return 0
	case FeatureDelta:
		return row.Number(spec.Source) - row.Number(spec.Second)
	case FeatureRatio:
		denom := row.Number(spec.Second)
		if denom == 0 {
			return 0
		}
		return row.Number(spec.Source) / denom
	default:
		return row.Number(spec.Source)
	}
}

// encodeLabel maps a category onto its training-time index. Categories the
// artifact never saw encode as -1, which the model families treat as an
// out-of-vocabulary bucket.
func encodeLabel(vocabulary []string, label string) float64 {
	for i, v := range vocabulary {
		if v == label {
			return float64(i)
		}
	}
	return -1
}
