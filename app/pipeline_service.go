package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/core"
	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal"
	apperrors "github.com/robertofernandezmartinez/ai-corporate-suite/internal/errors"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/normalize"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// PipelineService runs one uploaded dataset through the full scoring
// pipeline: normalize, featurize, score, classify, derive metrics, persist,
// summarize. Concurrent uploads are bounded by a weighted semaphore; each
// request is otherwise independent.
type PipelineService struct {
	registry   *inference.Registry
	reader     ports.DatasetReader
	normalizer *normalize.Normalizer
	models     map[string]ports.ModelHandle
	batcher    *PersistenceBatcher
	sem        *semaphore.Weighted
	logger     *internal.Logger
}

// NewPipelineService creates the pipeline orchestrator.
func NewPipelineService(
	registry *inference.Registry,
	reader ports.DatasetReader,
	normalizer *normalize.Normalizer,
	models map[string]ports.ModelHandle,
	batcher *PersistenceBatcher,
	maxConcurrent int,
	logger *internal.Logger,
) *PipelineService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PipelineService{
		registry:   registry,
		reader:     reader,
		normalizer: normalizer,
		models:     models,
		batcher:    batcher,
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
		logger:     logger.Component("Pipeline"),
	}
}

// Domains returns the registered domain names.
func (s *PipelineService) Domains() []string {
	return s.registry.Names()
}

// Process runs one upload end to end. The returned summary is always
// populated; a non-nil error is only returned when the domain is unknown or
// the request never got a pipeline slot.
func (s *PipelineService) Process(ctx context.Context, domainName string, src io.Reader, filename string) (*inference.JobSummary, error) {
	d, ok := s.registry.Lookup(domainName)
	if !ok {
		return nil, core.ErrUnknownDomain
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	job := inference.NewUploadJob()
	uploadID := core.UploadID(core.NewID())
	batchAt := core.NewBatchAt(time.Now().UTC())
	s.logger.Info("Upload %s started for domain %s (%s)", uploadID, d.Name, filename)

	model, ok := s.models[d.Name]
	if !ok {
		return s.failSummary(job, d, uploadID, core.ErrModelNotLoaded), nil
	}

	dataset, err := s.reader.Read(ctx, src, filename)
	if err != nil {
		return s.failSummary(job, d, uploadID, err), nil
	}

	rows, err := s.normalizer.NormalizeDataset(d, dataset)
	if err != nil {
		return s.failSummary(job, d, uploadID, err), nil
	}
	s.advance(job, inference.StateNormalized)

	if err := ctx.Err(); err != nil {
		return s.failSummary(job, d, uploadID, err), nil
	}

	vectors := inference.EngineerAll(d, rows)
	s.advance(job, inference.StateFeaturized)

	scores, err := model.Score(vectors)
	if err != nil {
		return s.failSummary(job, d, uploadID, err), nil
	}
	s.advance(job, inference.StateScored)

	// Past this point the upload can no longer fail outright; persistence
	// problems surface as partial-failure data inside a successful summary.
	tiers := make([]inference.RiskTier, len(scores))
	for i, score := range scores {
		tiers[i] = inference.Classify(score, d.Thresholds)
	}
	s.advance(job, inference.StateClassified)

	records := make([]inference.PredictionRecord, len(rows))
	for i, row := range rows {
		metrics := inference.DeriveMetrics(d, row, scores[i], tiers[i])
		records[i] = inference.PredictionRecord{
			PredictionID: core.NewPredictionID(d.IDPrefix),
			UploadID:     uploadID,
			Entity:       row.Identity,
			Cycle:        row.Number(d.CycleColumn),
			Score:        scores[i],
			Tier:         tiers[i],
			Action:       metrics.RecommendedAction,
			Impact:       metrics.FinancialImpact,
			Carry:        carryColumns(d, row),
			BatchAt:      batchAt,
		}
	}
	s.advance(job, inference.StateMetricsDerived)

	persistence := s.batcher.Persist(ctx, d, records)
	s.advance(job, inference.StatePersisted)

	summary := &inference.JobSummary{
		Success:          true,
		Domain:           d.Name,
		UploadID:         uploadID,
		ProcessedRecords: len(records),
		RiskDistribution: tierDistribution(tiers),
		AggregateMetrics: s.aggregate(d, scores, records),
		Persistence:      persistence,
		GeneratedAt:      core.Now(),
	}
	s.advance(job, inference.StateSummarized)

	s.logger.Info("Upload %s done: %d records, %d committed, %d failed chunks",
		uploadID, len(records), persistence.Committed, len(persistence.FailedChunks))
	return summary, nil
}

// failSummary marks the job failed and builds the structured failure response.
func (s *PipelineService) failSummary(job *inference.UploadJob, d inference.Descriptor, uploadID core.UploadID, cause error) *inference.JobSummary {
	if err := job.Fail(); err != nil {
		s.logger.Error("%v", err)
	}
	appErr := classifyFailure(cause)
	s.logger.Warn("Upload %s failed for domain %s: %v", uploadID, d.Name, appErr)
	return &inference.JobSummary{
		Success:     false,
		Domain:      d.Name,
		UploadID:    uploadID,
		Detail:      cause.Error(),
		ErrorCode:   apperrors.GetCode(appErr),
		GeneratedAt: core.Now(),
	}
}

// classifyFailure maps a pipeline failure onto the service error taxonomy.
func classifyFailure(cause error) error {
	switch {
	case core.IsNormalizationError(cause):
		return apperrors.NormalizationError("dataset rejected", cause)
	case core.IsInferenceError(cause):
		return apperrors.InferenceError("scoring failed", cause)
	case core.IsPersistenceError(cause):
		return apperrors.PersistenceError("persistence failed", cause)
	case errors.Is(cause, core.ErrEmptyDataset) || errors.Is(cause, core.ErrUnreadableUpload):
		return apperrors.InvalidInput(cause.Error())
	default:
		return apperrors.Wrap(cause, "upload failed")
	}
}

func (s *PipelineService) advance(job *inference.UploadJob, next inference.PipelineState) {
	if err := job.Advance(next); err != nil {
		s.logger.Error("%v", err)
	}
}

// aggregate computes the batch-level metrics for the summary.
func (s *PipelineService) aggregate(d inference.Descriptor, scores []float64, records []inference.PredictionRecord) map[string]float64 {
	aggregates := make(map[string]float64, 6)
	if mean, err := stats.Mean(scores); err == nil {
		aggregates[d.ScoreName] = mean
	}
	if median, err := stats.Median(scores); err == nil {
		aggregates["median_score"] = median
	}
	if min, err := stats.Min(scores); err == nil {
		aggregates["min_score"] = min
	}
	if max, err := stats.Max(scores); err == nil {
		aggregates["max_score"] = max
	}
	highRisk := make(map[inference.RiskTier]bool, len(d.HighRiskTiers))
	for _, tier := range d.HighRiskTiers {
		highRisk[tier] = true
	}
	if len(highRisk) == 0 {
		highRisk[d.Thresholds.Cuts[0].Tier] = true
	}
	entities := make(map[core.EntityID]struct{}, len(records))
	severe := 0.0
	for _, rec := range records {
		entities[rec.Entity] = struct{}{}
		if highRisk[rec.Tier] {
			severe++
		}
	}
	aggregates["entities_analyzed"] = float64(len(entities))
	aggregates["high_risk_records"] = severe
	if d.Exposure != nil {
		total := 0.0
		for _, rec := range records {
			total += rec.Impact
		}
		aggregates["total_financial_impact"] = total
	}
	return aggregates
}

func tierDistribution(tiers []inference.RiskTier) map[inference.RiskTier]int {
	dist := make(map[inference.RiskTier]int, 4)
	for _, tier := range tiers {
		dist[tier]++
	}
	return dist
}

// carryColumns copies the descriptor's passthrough columns into the stored
// record, label columns first since that is what they usually are.
func carryColumns(d inference.Descriptor, row inference.CanonicalRow) map[string]any {
	if len(d.CarryColumns) == 0 {
		return nil
	}
	carry := make(map[string]any, len(d.CarryColumns))
	for _, column := range d.CarryColumns {
		if v, ok := row.Labels[column]; ok {
			carry[column] = v
			continue
		}
		if v, ok := row.Numbers[column]; ok {
			carry[column] = v
		}
	}
	return carry
}
