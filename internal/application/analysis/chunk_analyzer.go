package analysis

import (
	"context"
	"strings"
	"time"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"go.uber.org/zap"
)

// VideoMIMEType is the mime type sent with every inline video part
const VideoMIMEType = "video/mp4"

// ChunkAnalyzer sends one chunk to the generative model. It does not retry;
// callers compose it with pkg/retry.
type ChunkAnalyzer struct {
	model   outbound.GenerativeModel
	metrics outbound.PipelineMetrics
	logger  *zap.Logger
}

// NewChunkAnalyzer creates a chunk analyzer
func NewChunkAnalyzer(model outbound.GenerativeModel, metrics outbound.PipelineMetrics, logger *zap.Logger) *ChunkAnalyzer {
	return &ChunkAnalyzer{
		model:   model,
		metrics: metrics,
		logger:  logger.Named("chunk-analyzer"),
	}
}

// AnalyzeChunk returns the raw model text for chunk. An empty reply is an error.
func (a *ChunkAnalyzer) AnalyzeChunk(ctx context.Context, chunk []byte, pos domain.ChunkPosition, template string) (string, error) {
	return a.generate(ctx, "analyze_chunk", chunk, BuildChunkPrompt(template, pos))
}

// Classify sends the pre-screen prompt for the whole video
func (a *ChunkAnalyzer) Classify(ctx context.Context, data []byte) (string, error) {
	return a.generate(ctx, "prescreen", data, PreScreenPrompt)
}

func (a *ChunkAnalyzer) generate(ctx context.Context, operation string, data []byte, prompt string) (string, error) {
	start := time.Now()

	text, err := a.model.GenerateFromVideo(ctx, outbound.VideoPrompt{
		MIMEType: VideoMIMEType,
		Data:     data,
		Prompt:   prompt,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = apperrors.NewEmptyAIResponseError(a.model.Name())
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if a.metrics != nil {
		a.metrics.ObserveAICall(operation, outcome, time.Since(start))
	}

	if err != nil {
		a.logger.Warn("Model call failed",
			zap.String("operation", operation),
			zap.String("model", a.model.Name()),
			zap.Int("payload_bytes", len(data)),
			zap.Error(err),
		)
		return "", err
	}

	a.logger.Debug("Model call succeeded",
		zap.String("operation", operation),
		zap.Int("payload_bytes", len(data)),
		zap.Int("response_chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	return text, nil
}
