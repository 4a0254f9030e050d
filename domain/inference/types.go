package inference

import (
	"time"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/core"
)

// TabularDataset is one uploaded file parsed into raw cells. The first record
// may or may not be a header row; binding happens against a Descriptor during
// normalization, so the same domain accepts headered and headerless files.
type TabularDataset struct {
	Filename string
	Records  [][]string
}

// RawRow is one input row keyed by source header (or by the domain's fixed
// column order for headerless files). Values are untyped cells.
type RawRow map[string]string

// CanonicalRow is a row rewritten onto one domain's fixed schema. Every column
// the feature engineer needs is present and typed: numeric fields are numbers
// with deterministic fallbacks, categorical fields are never-missing strings.
type CanonicalRow struct {
	Identity core.EntityID
	Numbers  map[string]float64
	Labels   map[string]string
	Times    map[string]time.Time

	// filled tracks columns healed with declared defaults, so metric
	// derivation can distinguish "absent in source" from a true zero.
	filled map[string]bool
}

// NewCanonicalRow creates an empty canonical row for the given entity.
func NewCanonicalRow(identity core.EntityID) CanonicalRow {
	return CanonicalRow{
		Identity: identity,
		Numbers:  make(map[string]float64),
		Labels:   make(map[string]string),
		Times:    make(map[string]time.Time),
		filled:   make(map[string]bool),
	}
}

// Number returns the numeric column value, zero if the column is unknown.
func (r CanonicalRow) Number(name string) float64 { return r.Numbers[name] }

// Label returns the categorical column value, empty if unknown.
func (r CanonicalRow) Label(name string) string { return r.Labels[name] }

// Time returns the time column value, zero time if unknown or unparsable.
func (r CanonicalRow) Time(name string) time.Time { return r.Times[name] }

// MarkFilled records that a column was healed with its declared default.
func (r CanonicalRow) MarkFilled(name string) { r.filled[name] = true }

// WasFilled reports whether the column value came from a default.
func (r CanonicalRow) WasFilled(name string) bool { return r.filled[name] }

// FeatureVector is the exact ordered numeric tuple a model artifact was built
// against. Categorical fields arrive already label-encoded; length and order
// are stable for the lifetime of the artifact.
type FeatureVector []float64

// RiskTier is a discrete, ordered classification of a continuous score.
type RiskTier string

const (
	TierNormal   RiskTier = "NORMAL"
	TierWarning  RiskTier = "WARNING"
	TierLow      RiskTier = "LOW"
	TierMedium   RiskTier = "MEDIUM"
	TierHigh     RiskTier = "HIGH"
	TierCritical RiskTier = "CRITICAL"
)

// DerivedMetrics holds the secondary business metrics computed from a score
// plus raw fields.
type DerivedMetrics struct {
	RecommendedAction string             `json:"recommended_action"`
	FinancialImpact   float64            `json:"financial_impact,omitempty"`
	Extra             map[string]float64 `json:"extra,omitempty"`
}

// ScoreResult is the scored, classified outcome for one row.
type ScoreResult struct {
	Identity    core.EntityID  `json:"row_identity"`
	Score       float64        `json:"continuous_score"`
	Tier        RiskTier       `json:"risk_tier"`
	Metrics     DerivedMetrics `json:"derived_metrics"`
	GeneratedAt core.Timestamp `json:"generated_at"`
}

// PredictionRecord is a ScoreResult plus a globally unique prediction id and
// the upload batch timestamp - the unit persisted to storage. Never mutated
// after creation.
type PredictionRecord struct {
	PredictionID core.PredictionID
	UploadID     core.UploadID
	Entity       core.EntityID
	Cycle        float64 // natural-key second component, when the domain has one
	Score        float64
	Tier         RiskTier
	Action       string
	Impact       float64
	Carry        map[string]any // raw columns copied through per descriptor
	BatchAt      core.BatchAt
}

// ChunkFailure records one persistence chunk that exhausted its retries.
type ChunkFailure struct {
	Chunk       int    `json:"chunk"`
	FirstRecord int    `json:"first_record"`
	LastRecord  int    `json:"last_record"`
	Attempts    int    `json:"attempts"`
	Reason      string `json:"reason"`
}

// PersistenceSummary reports the outcome of persisting one result set.
type PersistenceSummary struct {
	Attempted    int            `json:"attempted"`
	Committed    int            `json:"committed"`
	FailedChunks []ChunkFailure `json:"failed_chunks"`
}

// JobSummary is the structured per-upload response. Partial persistence
// failures are data inside a successful summary, never a request failure.
type JobSummary struct {
	Success          bool               `json:"success"`
	Domain           string             `json:"domain"`
	UploadID         core.UploadID      `json:"upload_id"`
	ProcessedRecords int                `json:"processed_records"`
	RiskDistribution map[RiskTier]int   `json:"risk_distribution"`
	AggregateMetrics map[string]float64 `json:"aggregate_metrics"`
	Persistence      PersistenceSummary `json:"persistence"`
	Detail           string             `json:"detail,omitempty"`
	ErrorCode        string             `json:"error_code,omitempty"`
	GeneratedAt      core.Timestamp     `json:"timestamp"`
}
