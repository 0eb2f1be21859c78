package analysis

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var codeFence = regexp.MustCompile("```(?:json|JSON)?")

// PreScreenGate classifies a video with one cheap model call and only runs
// the full extraction for videos that look like cooking content
type PreScreenGate struct {
	analyzer  *ChunkAnalyzer
	extractor *RecipeExtractor
	threshold float64
	metrics   outbound.PipelineMetrics
	logger    *zap.Logger
}

// Ensure PreScreenGate implements the inbound port
var _ inbound.PreScreenService = (*PreScreenGate)(nil)

// NewPreScreenGate creates a gate. A non-positive threshold uses the default.
func NewPreScreenGate(
	analyzer *ChunkAnalyzer,
	extractor *RecipeExtractor,
	threshold float64,
	metrics outbound.PipelineMetrics,
	logger *zap.Logger,
) *PreScreenGate {
	if threshold <= 0 {
		threshold = domain.DefaultPreScreenThreshold
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &PreScreenGate{
		analyzer:  analyzer,
		extractor: extractor,
		threshold: threshold,
		metrics:   metrics,
		logger:    logger.Named("prescreen"),
	}
}

// Screen classifies data. The reply must be a JSON object, optionally wrapped
// in markdown code fences.
func (g *PreScreenGate) Screen(ctx context.Context, data []byte) (domain.PreScreenResult, error) {
	raw, err := g.analyzer.Classify(ctx, data)
	if err != nil {
		return domain.PreScreenResult{}, err
	}
	return ParsePreScreen(raw)
}

// ScreenAndAnalyze screens data and, when it passes, extracts the recipe from
// the same bytes. Below the threshold Analysis is nil and no further model
// calls are made.
func (g *PreScreenGate) ScreenAndAnalyze(ctx context.Context, data []byte) (domain.Outcome, error) {
	ctx, span := tracer.Start(ctx, "analysis.prescreen")
	defer span.End()

	result, err := g.Screen(ctx, data)
	if err != nil {
		return domain.Outcome{}, err
	}

	passed := result.Passes(g.threshold)
	g.metrics.RecordPreScreen(passed)
	span.SetAttributes(
		attribute.Bool("prescreen.passed", passed),
		attribute.Float64("prescreen.confidence", result.Confidence),
	)

	if !passed {
		g.logger.Info("Video rejected by pre-screen",
			zap.Bool("is_cooking_video", result.IsCookingVideo),
			zap.Float64("confidence", result.Confidence),
			zap.String("reason", result.Reason),
		)
		return domain.Outcome{PreScreen: result}, nil
	}

	a, err := g.extractor.Extract(ctx, data)
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{PreScreen: result, Analysis: &a}, nil
}

// ParsePreScreen decodes a classification reply after stripping code fences
func ParsePreScreen(raw string) (domain.PreScreenResult, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))

	var result domain.PreScreenResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return domain.PreScreenResult{}, apperrors.NewParseFailedError(err)
	}
	if result.DetectedContent.CookingTechniquesShown == nil {
		result.DetectedContent.CookingTechniquesShown = []string{}
	}
	return result, nil
}
