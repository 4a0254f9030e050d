package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/core"
	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/normalize"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// csvReader parses plain comma-separated text, enough for pipeline tests.
type csvReader struct{}

func (csvReader) Read(ctx context.Context, src io.Reader, filename string) (*inference.TabularDataset, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	var records [][]string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, strings.Split(line, ","))
	}
	if len(records) == 0 {
		return nil, core.ErrEmptyDataset
	}
	return &inference.TabularDataset{Filename: filename, Records: records}, nil
}

// stubModel scores each vector with its first feature value.
type stubModel struct {
	arity int
	err   error
}

func (m stubModel) Meta() ports.ModelMeta {
	return ports.ModelMeta{Domain: "testdomain", Family: ports.FamilyClassifier, Arity: m.arity}
}

func (m stubModel) Score(vectors []inference.FeatureVector) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	scores := make([]float64, len(vectors))
	for i, vec := range vectors {
		scores[i] = vec[0]
	}
	return scores, nil
}

func pipelineDescriptor() inference.Descriptor {
	return inference.Descriptor{
		Name:             "testdomain",
		IDPrefix:         "TD",
		Table:            "test_predictions",
		IdentifierColumn: "entity_id",
		NumericDefaults: map[string]float64{
			"risk":       0,
			"price":      0,
			"units_sold": 0,
		},
		Features: []inference.FeatureSpec{
			{Name: "risk", Kind: inference.FeatureNumeric, Source: "risk"},
		},
		ContractVersion: "test-fc-1",
		ArtifactFile:    "testdomain_model.json",
		Thresholds: inference.Thresholds{
			Operator: inference.OpGreaterOrEqual,
			Cuts: []inference.TierCut{
				{Tier: inference.TierCritical, Cut: 0.9},
				{Tier: inference.TierWarning, Cut: 0.7},
			},
			Fallback: inference.TierNormal,
		},
		Actions: map[inference.RiskTier]string{
			inference.TierCritical: "act now",
			inference.TierWarning:  "watch",
			inference.TierNormal:   "rest",
		},
		Exposure: &inference.ExposureSpec{
			PriceColumn:    "price",
			VelocityColumn: "units_sold",
		},
		ScoreName:   "mean_risk_score",
		ScoreColumn: "score",
		TierColumn:  "tier",
		BatchSize:   2,
	}
}

func newTestPipeline(t *testing.T, model ports.ModelHandle, store ports.PredictionStore) *PipelineService {
	t.Helper()
	registry := inference.NewRegistry()
	require.NoError(t, registry.Register(pipelineDescriptor()))
	batcher := NewPersistenceBatcher(store, 1, time.Millisecond, nil)
	return NewPipelineService(registry, csvReader{}, normalize.New(), map[string]ports.ModelHandle{
		"testdomain": model,
	}, batcher, 2, nil)
}

func TestProcessHappyPath(t *testing.T) {
	store := &scriptedStore{}
	service := newTestPipeline(t, stubModel{arity: 1}, store)

	input := "entity_id,risk,price,units_sold\nE1,0.95,10,2\nE2,0.75,5,1\nE3,0.10,1,1\n"
	summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")

	require.NoError(t, err)
	require.True(t, summary.Success)
	assert.Equal(t, 3, summary.ProcessedRecords)
	assert.Equal(t, 1, summary.RiskDistribution[inference.TierCritical])
	assert.Equal(t, 1, summary.RiskDistribution[inference.TierWarning])
	assert.Equal(t, 1, summary.RiskDistribution[inference.TierNormal])
	assert.InDelta(t, 0.6, summary.AggregateMetrics["mean_risk_score"], 1e-9)
	assert.InDelta(t, 0.95*10*2+0.75*5*1+0.10*1*1, summary.AggregateMetrics["total_financial_impact"], 1e-9)
	assert.Equal(t, 3.0, summary.AggregateMetrics["entities_analyzed"])
	assert.Equal(t, 1.0, summary.AggregateMetrics["high_risk_records"])
	assert.InDelta(t, 0.75, summary.AggregateMetrics["median_score"], 1e-9)
	assert.Equal(t, 3, summary.Persistence.Committed)
	assert.Empty(t, summary.Persistence.FailedChunks)
	assert.NotEmpty(t, summary.UploadID)

	// Chunked by the descriptor batch size: 2 + 1.
	require.Len(t, store.inserted, 2)
}

func TestProcessStoredFieldsCarryDomainColumns(t *testing.T) {
	store := &scriptedStore{}
	service := newTestPipeline(t, stubModel{arity: 1}, store)

	input := "entity_id,risk,price,units_sold\nE1,0.95,10,2\n"
	summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")
	require.NoError(t, err)
	require.True(t, summary.Success)

	require.Len(t, store.inserted, 1)
	row := store.inserted[0][0]
	assert.Equal(t, "E1", row["entity_id"])
	assert.Equal(t, 0.95, row["score"])
	assert.Equal(t, "CRITICAL", row["tier"])
	assert.Equal(t, "act now", row["recommended_action"])
	assert.InDelta(t, 19.0, row["financial_impact"].(float64), 1e-9)
	assert.True(t, strings.HasPrefix(row["prediction_id"].(string), "TD_"))
}

func TestProcessMissingExposureInputsZeroImpact(t *testing.T) {
	store := &scriptedStore{}
	service := newTestPipeline(t, stubModel{arity: 1}, store)

	// No price column at all: healed to zero, impact degrades to zero.
	input := "entity_id,risk,units_sold\nE1,0.95,2\n"
	summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")
	require.NoError(t, err)
	require.True(t, summary.Success)

	row := store.inserted[0][0]
	assert.Equal(t, 0.0, row["financial_impact"])
}

func TestProcessCountsDistinctEntities(t *testing.T) {
	store := &scriptedStore{}
	service := newTestPipeline(t, stubModel{arity: 1}, store)

	// E1 appears twice: three records, two entities.
	input := "entity_id,risk,price,units_sold\nE1,0.95,1,1\nE1,0.10,1,1\nE2,0.20,1,1\n"
	summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")

	require.NoError(t, err)
	require.True(t, summary.Success)
	assert.Equal(t, 3, summary.ProcessedRecords)
	assert.Equal(t, 2.0, summary.AggregateMetrics["entities_analyzed"])
}

func TestProcessHighRiskTiersFromDescriptor(t *testing.T) {
	d := pipelineDescriptor()
	d.HighRiskTiers = []inference.RiskTier{inference.TierCritical, inference.TierWarning}

	registry := inference.NewRegistry()
	require.NoError(t, registry.Register(d))
	store := &scriptedStore{}
	batcher := NewPersistenceBatcher(store, 1, time.Millisecond, nil)
	service := NewPipelineService(registry, csvReader{}, normalize.New(), map[string]ports.ModelHandle{
		"testdomain": stubModel{arity: 1},
	}, batcher, 2, nil)

	input := "entity_id,risk,price,units_sold\nE1,0.95,1,1\nE2,0.75,1,1\nE3,0.10,1,1\n"
	summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")

	require.NoError(t, err)
	require.True(t, summary.Success)
	// Both configured tiers count, not just the most severe.
	assert.Equal(t, 2.0, summary.AggregateMetrics["high_risk_records"])
}

func TestProcessUnknownDomain(t *testing.T) {
	service := newTestPipeline(t, stubModel{arity: 1}, &scriptedStore{})
	_, err := service.Process(context.Background(), "warehouse", strings.NewReader("x"), "data.csv")
	assert.ErrorIs(t, err, core.ErrUnknownDomain)
}

func TestProcessMissingIdentifierColumnFails(t *testing.T) {
	service := newTestPipeline(t, stubModel{arity: 1}, &scriptedStore{})

	input := "risk,price\n0.5,10\n"
	summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")

	require.NoError(t, err)
	assert.False(t, summary.Success)
	assert.Contains(t, summary.Detail, "missing required column")
	assert.Equal(t, "NORMALIZATION_ERROR", summary.ErrorCode)
	assert.Zero(t, summary.ProcessedRecords)
}

func TestProcessModelFailureFailsUpload(t *testing.T) {
	service := newTestPipeline(t, stubModel{arity: 1, err: core.NewArityMismatchError(1, 3)}, &scriptedStore{})

	input := "entity_id,risk\nE1,0.5\n"
	summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")

	require.NoError(t, err)
	assert.False(t, summary.Success)
	assert.Contains(t, summary.Detail, "arity")
	assert.Equal(t, "INFERENCE_ERROR", summary.ErrorCode)
}

func TestProcessPartialPersistenceIsStillSuccess(t *testing.T) {
	store := &scriptedStore{script: map[int]error{
		1: &ports.ChunkError{Transient: false, Err: errors.New("bad chunk")},
	}}
	service := newTestPipeline(t, stubModel{arity: 1}, store)

	input := "entity_id,risk,price,units_sold\nE1,0.95,1,1\nE2,0.10,1,1\nE3,0.20,1,1\n"
	summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")

	require.NoError(t, err)
	assert.True(t, summary.Success, "persistence failure must not fail the upload")
	assert.Equal(t, 1, summary.Persistence.Committed)
	require.Len(t, summary.Persistence.FailedChunks, 1)
	assert.Equal(t, "chunk write failed (validation): bad chunk", summary.Persistence.FailedChunks[0].Reason)
}

func TestProcessDeterministicScores(t *testing.T) {
	input := "entity_id,risk,price,units_sold\nE1,0.42,3,4\n"
	var firstImpact float64
	for i := 0; i < 5; i++ {
		store := &scriptedStore{}
		service := newTestPipeline(t, stubModel{arity: 1}, store)
		summary, err := service.Process(context.Background(), "testdomain", strings.NewReader(input), "data.csv")
		require.NoError(t, err)
		require.True(t, summary.Success)
		impact := store.inserted[0][0]["financial_impact"].(float64)
		if i == 0 {
			firstImpact = impact
			continue
		}
		assert.Equal(t, firstImpact, impact, "run %d drifted", i)
	}
}
