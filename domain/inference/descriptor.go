package inference

import (
	"fmt"
	"sort"
	"sync"
)

// FeatureKind selects how the engineer derives one feature value.
type FeatureKind string

const (
	// FeatureNumeric passes a canonical numeric column through verbatim.
	FeatureNumeric FeatureKind = "numeric"
	// FeatureCategorical label-encodes a canonical string column against the
	// vocabulary the model artifact was trained with.
	FeatureCategorical FeatureKind = "categorical"
	// FeatureWeekday is the 0-6 weekday index of a time column (-1 unknown).
	FeatureWeekday FeatureKind = "weekday"
	// FeatureWeekend is the weekend flag of a time column (0 when unknown).
	FeatureWeekend FeatureKind = "weekend"
	// FeatureDelta is Source minus Second.
	FeatureDelta FeatureKind = "delta"
	// FeatureRatio is Source over Second, zero when Second is zero.
	FeatureRatio FeatureKind = "ratio"
)

// FeatureSpec declares one slot of a model's feature contract. Order inside
// Descriptor.Features is the vector order and is versioned together with the
// artifact via ContractVersion.
type FeatureSpec struct {
	Name       string
	Kind       FeatureKind
	Source     string   // canonical column read
	Second     string   // second operand for delta/ratio
	Vocabulary []string // label encoding for categorical features
}

// ExposureSpec declares the monetary-exposure formula inputs for domains that
// carry one (exposure = score x price column x velocity column).
type ExposureSpec struct {
	PriceColumn    string
	VelocityColumn string
}

// Descriptor is the full configuration of one prediction domain: rename map,
// defaults, feature order, thresholds, conflict key. Adding a domain means
// adding a descriptor value, never new control flow.
type Descriptor struct {
	Name     string
	IDPrefix string
	Table    string

	// Schema binding
	IdentifierColumn  string
	CycleColumn       string // optional second natural-key component
	RenameMap         map[string]string
	NumericDefaults   map[string]float64
	LabelDefaults     map[string]string
	TimeColumns       []string
	DropColumns       []string              // training targets to ignore when present
	HeaderlessColumns func(width int) []string // nil: a header row is required

	// Model contract
	Features        []FeatureSpec
	ContractVersion string
	ArtifactFile    string

	// Classification and metrics
	Thresholds Thresholds
	Actions    map[RiskTier]string
	Exposure   *ExposureSpec
	ScoreName  string // summary key for the raw score (e.g. "mean_risk_score")
	// HighRiskTiers are the tiers counted as high risk in the summary.
	// Empty means the single most severe tier.
	HighRiskTiers []RiskTier

	// Persistence
	ScoreColumn  string
	TierColumn   string
	CarryColumns []string // canonical columns copied into the stored record
	BatchSize    int
	ConflictKey  []string // empty: pure insert
}

// FeatureNames returns the ordered feature contract names.
func (d Descriptor) FeatureNames() []string {
	names := make([]string, len(d.Features))
	for i, f := range d.Features {
		names[i] = f.Name
	}
	return names
}

// Validate checks the descriptor is internally consistent. Called at registry
// registration so a broken descriptor fails at startup, not per request.
func (d Descriptor) Validate() error {
	if d.Name == "" || d.Table == "" || d.IdentifierColumn == "" {
		return fmt.Errorf("descriptor needs name, table and identifier column")
	}
	if len(d.Features) == 0 {
		return fmt.Errorf("descriptor %s declares no features", d.Name)
	}
	if d.ContractVersion == "" {
		return fmt.Errorf("descriptor %s has no feature contract version", d.Name)
	}
	if d.BatchSize <= 0 {
		return fmt.Errorf("descriptor %s has non-positive batch size", d.Name)
	}
	if err := d.Thresholds.Validate(); err != nil {
		return fmt.Errorf("descriptor %s thresholds: %w", d.Name, err)
	}
	// The recommended-action mapping must be total over reachable tiers.
	reachable := make(map[RiskTier]bool)
	for _, tier := range d.Thresholds.Tiers() {
		reachable[tier] = true
		if _, ok := d.Actions[tier]; !ok {
			return fmt.Errorf("descriptor %s has no action for tier %s", d.Name, tier)
		}
	}
	for _, tier := range d.HighRiskTiers {
		if !reachable[tier] {
			return fmt.Errorf("descriptor %s counts unreachable tier %s as high risk", d.Name, tier)
		}
	}
	seen := make(map[string]bool, len(d.Features))
	for _, f := range d.Features {
		if f.Name == "" || f.Source == "" {
			return fmt.Errorf("descriptor %s has a feature without name or source", d.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("descriptor %s declares feature %s twice", d.Name, f.Name)
		}
		seen[f.Name] = true
		if (f.Kind == FeatureDelta || f.Kind == FeatureRatio) && f.Second == "" {
			return fmt.Errorf("feature %s needs a second operand", f.Name)
		}
		if f.Kind == FeatureCategorical && len(f.Vocabulary) == 0 {
			return fmt.Errorf("categorical feature %s has an empty vocabulary", f.Name)
		}
	}
	return nil
}

// RecordFields flattens a prediction record into the mapping-of-fields shape
// the table store accepts, using this domain's column names.
func (d Descriptor) RecordFields(rec PredictionRecord) map[string]any {
	fields := map[string]any{
		"prediction_id":      rec.PredictionID.String(),
		"upload_id":          rec.UploadID.String(),
		d.IdentifierColumn:   rec.Entity.String(),
		d.ScoreColumn:        rec.Score,
		d.TierColumn:         string(rec.Tier),
		"recommended_action": rec.Action,
		"batch_at":           rec.BatchAt.Time(),
	}
	if d.CycleColumn != "" {
		fields[d.CycleColumn] = rec.Cycle
	}
	if d.Exposure != nil {
		fields["financial_impact"] = rec.Impact
	}
	for k, v := range rec.Carry {
		fields[k] = v
	}
	return fields
}

// Registry holds the known domain descriptors. Read-only after startup and
// safe for concurrent lookups.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]Descriptor)}
}

// Register validates and adds a descriptor.
func (r *Registry) Register(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[d.Name]; exists {
		return fmt.Errorf("domain %s already registered", d.Name)
	}
	r.descriptors[d.Name] = d
	return nil
}

// Lookup returns the descriptor for a domain name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[name]
	return d, ok
}

// Names returns the registered domain names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
