package analysis

import (
	"context"
	"fmt"
	"time"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	"github.com/alchemorsel/reelchef/pkg/retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DefaultRetryPolicy retries each chunk call three times starting at 5s
func DefaultRetryPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 3, InitialDelay: 5 * time.Second}
}

// RecipeExtractor turns raw video bytes into one merged analysis: plan chunks,
// call the model for each chunk in order with retry, parse, merge.
type RecipeExtractor struct {
	analyzer *ChunkAnalyzer
	policy   ChunkPolicy
	retry    retry.Policy
	metrics  outbound.PipelineMetrics
	logger   *zap.Logger
}

// NewRecipeExtractor creates an extractor. The chunk policy is validated here
// so misconfiguration fails at startup.
func NewRecipeExtractor(
	analyzer *ChunkAnalyzer,
	policy ChunkPolicy,
	retryPolicy retry.Policy,
	metrics outbound.PipelineMetrics,
	logger *zap.Logger,
) (*RecipeExtractor, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &RecipeExtractor{
		analyzer: analyzer,
		policy:   policy,
		retry:    retryPolicy,
		metrics:  metrics,
		logger:   logger.Named("recipe-extractor"),
	}, nil
}

// Extract analyzes data chunk by chunk. Chunks are never processed
// concurrently since each prompt refers to the previous segment.
func (e *RecipeExtractor) Extract(ctx context.Context, data []byte) (domain.RecipeAnalysis, error) {
	ctx, span := tracer.Start(ctx, "analysis.extract")
	defer span.End()

	plan, err := PlanChunks(int64(len(data)), e.policy)
	if err != nil {
		return domain.RecipeAnalysis{}, err
	}
	if plan.Len() == 0 {
		return domain.RecipeAnalysis{}, fmt.Errorf("video is empty")
	}

	span.SetAttributes(
		attribute.Int64("video.bytes", plan.TotalSize),
		attribute.Int("analysis.chunks", plan.Len()),
	)
	e.metrics.ObserveChunks(plan.Len())

	results := make([]domain.RecipeAnalysis, 0, plan.Len())
	for i := range plan.Ranges {
		a, err := e.extractChunk(ctx, plan.Slice(data, i), plan.Position(i))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return domain.RecipeAnalysis{}, fmt.Errorf("chunk %d/%d: %w", i+1, plan.Len(), err)
		}
		results = append(results, a)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return Merge(results)
}

func (e *RecipeExtractor) extractChunk(ctx context.Context, chunk []byte, pos domain.ChunkPosition) (domain.RecipeAnalysis, error) {
	raw, err := retry.Do(ctx, e.retry,
		func(ctx context.Context) (string, error) {
			return e.analyzer.AnalyzeChunk(ctx, chunk, pos, RecipeAnalysisPrompt)
		},
		retry.WithNotify(func(attempt int, err error, delay time.Duration) {
			e.metrics.RecordAIRetry("analyze_chunk")
			e.logger.Warn("Retrying chunk analysis",
				zap.Int("chunk", pos.Index+1),
				zap.Int("chunks", pos.Total),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return domain.RecipeAnalysis{}, err
	}

	result := Parse(raw)
	switch r := result.(type) {
	case ParsedStructured:
		e.logger.Warn("Model returned non-JSON output, used labeled-text fallback",
			zap.Int("chunk", pos.Index+1),
			zap.NamedError("json_error", r.JSONErr),
		)
	case ParseFailure:
		e.logger.Error("Failed to parse model output",
			zap.Int("chunk", pos.Index+1),
			zap.Error(r.Err),
		)
	}

	return Resolve(result)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRun(string, time.Duration) {}
func (nopMetrics) RecordCacheLookup(bool) {}
func (nopMetrics) ObserveChunks(int) {}
func (nopMetrics) ObserveAICall(string, string, time.Duration) {}
func (nopMetrics) RecordAIRetry(string) {}
func (nopMetrics) RecordPreScreen(bool) {}
