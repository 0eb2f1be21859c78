package analysis

import (
	"context"
	"errors"
	"time"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/alchemorsel/reelchef/internal/application/analysis")

// Run outcomes reported to metrics
const (
	OutcomeSuccess = "success"
	OutcomeCached  = "cached"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Pipeline drives one video through pending -> processing -> active|failed.
// It is the only component that writes video records or the cache.
type Pipeline struct {
	videos    outbound.VideoRepository
	cache     outbound.AnalysisCache
	source    VideoSource
	extractor *RecipeExtractor
	notifier  outbound.StatusNotifier
	metrics   outbound.PipelineMetrics
	logger    *zap.Logger
}

// Ensure Pipeline implements the inbound port
var _ inbound.VideoAnalysisService = (*Pipeline)(nil)

// NewPipeline creates a pipeline. notifier and metrics may be nil.
func NewPipeline(
	videos outbound.VideoRepository,
	cache outbound.AnalysisCache,
	source VideoSource,
	extractor *RecipeExtractor,
	notifier outbound.StatusNotifier,
	metrics outbound.PipelineMetrics,
	logger *zap.Logger,
) *Pipeline {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Pipeline{
		videos:    videos,
		cache:     cache,
		source:    source,
		extractor: extractor,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger.Named("pipeline"),
	}
}

// Run analyzes the video the trigger refers to, loading its bytes from the
// configured source
func (p *Pipeline) Run(ctx context.Context, trigger inbound.Trigger) error {
	return p.RunWithSource(ctx, trigger, p.source)
}

// RunWithSource is Run with an explicit byte source, used by the batch runner
// to analyze files it already downloaded.
//
// Untracked objects and missing records are skipped without error. Once the
// record is marked processing, any failure is written to the record as
// status failed and returned unchanged.
func (p *Pipeline) RunWithSource(ctx context.Context, trigger inbound.Trigger, source VideoSource) error {
	start := time.Now()
	logger := p.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("trigger", string(trigger.Source)),
	)

	id, ok := trackableID(trigger)
	if !ok {
		logger.Debug("Ignoring object outside the videos prefix",
			zap.String("object", trigger.ObjectName),
			zap.String("content_type", trigger.ContentType),
		)
		p.metrics.ObserveRun(OutcomeSkipped, time.Since(start))
		return nil
	}
	logger = logger.With(zap.String("video_id", id))

	ctx, span := tracer.Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("video.id", id),
		attribute.String("trigger.source", string(trigger.Source)),
	))
	defer span.End()

	outcome, err := p.run(ctx, logger, id, trigger, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("analysis.outcome", outcome))
	p.metrics.ObserveRun(outcome, time.Since(start))

	return err
}

func (p *Pipeline) run(ctx context.Context, logger *zap.Logger, id string, trigger inbound.Trigger, source VideoSource) (string, error) {
	cached, err := p.cache.Get(ctx, id)
	if err != nil {
		logger.Warn("Analysis cache lookup failed, treating as miss", zap.Error(err))
		cached = nil
	}
	p.metrics.RecordCacheLookup(cached != nil)

	v, err := p.videos.FindByID(ctx, id)
	if errors.Is(err, video.ErrVideoNotFound) {
		logger.Info("Video record not found, skipping")
		return OutcomeSkipped, nil
	}
	if err != nil {
		return OutcomeFailed, err
	}

	if cached != nil {
		v.ApplyAnalysis(*cached)
		if err := p.save(ctx, logger, v); err != nil {
			return OutcomeFailed, err
		}
		logger.Info("Applied cached analysis", zap.String("title", cached.Title))
		return OutcomeCached, nil
	}

	v.MarkProcessing()
	if err := p.save(ctx, logger, v); err != nil {
		return OutcomeFailed, p.fail(ctx, logger, v, err)
	}

	result, err := p.analyze(ctx, logger, v, trigger, source)
	if err != nil {
		return OutcomeFailed, p.fail(ctx, logger, v, err)
	}

	v.ApplyAnalysis(result)
	if err := p.save(ctx, logger, v); err != nil {
		return OutcomeFailed, p.fail(ctx, logger, v, err)
	}

	if err := p.cache.Put(ctx, id, result); err != nil {
		return OutcomeFailed, p.fail(ctx, logger, v, err)
	}

	logger.Info("Video analysis completed",
		zap.String("title", result.Title),
		zap.Int("ingredients", len(result.Ingredients)),
		zap.Int("steps", len(result.Instructions)),
		zap.Float64("confidence", result.AIMetadata.ConfidenceScore),
	)
	return OutcomeSuccess, nil
}

func (p *Pipeline) analyze(ctx context.Context, logger *zap.Logger, v *video.Video, trigger inbound.Trigger, source VideoSource) (domain.RecipeAnalysis, error) {
	data, err := source.Load(ctx, v, trigger)
	if err != nil {
		return domain.RecipeAnalysis{}, err
	}
	logger.Info("Fetched video", zap.Int("bytes", len(data)))

	return p.extractor.Extract(ctx, data)
}

// fail records err on the video and returns it unchanged. The write uses a
// context detached from cancellation so a timed-out run still lands as failed.
func (p *Pipeline) fail(ctx context.Context, logger *zap.Logger, v *video.Video, cause error) error {
	logger.Error("Video analysis failed", zap.Error(cause))

	v.MarkFailed(cause.Error())
	if err := p.save(context.WithoutCancel(ctx), logger, v); err != nil {
		logger.Error("Failed to record failure on video", zap.Error(err))
	}
	return cause
}

func (p *Pipeline) save(ctx context.Context, logger *zap.Logger, v *video.Video) error {
	if err := p.videos.Save(ctx, v); err != nil {
		return err
	}
	publishStatusEvents(ctx, p.notifier, logger, v)
	return nil
}

// GetVideo returns the current record for id
func (p *Pipeline) GetVideo(ctx context.Context, id string) (*video.Video, error) {
	v, err := p.videos.FindByID(ctx, id)
	if errors.Is(err, video.ErrVideoNotFound) {
		return nil, apperrors.NewVideoNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find video", err)
	}
	return v, nil
}

// Invalidate drops the cached analysis so the next run calls the model again
func (p *Pipeline) Invalidate(ctx context.Context, id string) error {
	return p.cache.Delete(ctx, id)
}

// trackableID returns the video id a trigger refers to. Storage events must
// name an object under the videos prefix.
func trackableID(trigger inbound.Trigger) (string, bool) {
	if trigger.Source != inbound.TriggerStorageFinalize {
		return trigger.VideoID, trigger.VideoID != ""
	}

	id, ok := video.IDFromObjectName(trigger.ObjectName)
	if !ok {
		return "", false
	}
	if trigger.ContentType != "" && !video.IsVideoObject(trigger.ObjectName, trigger.ContentType) {
		return "", false
	}
	return id, true
}

// publishStatusEvents drains v's pending events to notifier. Delivery errors
// are logged; status updates are best effort.
func publishStatusEvents(ctx context.Context, notifier outbound.StatusNotifier, logger *zap.Logger, v *video.Video) {
	events := v.Events()
	if notifier == nil {
		return
	}

	for _, e := range events {
		changed, ok := e.(video.StatusChangedEvent)
		if !ok {
			continue
		}
		err := notifier.Notify(ctx, outbound.StatusEvent{
			VideoID: changed.VideoID,
			Status:  changed.To,
			Error:   changed.Error,
			At:      changed.ChangedAt,
		})
		if err != nil {
			logger.Warn("Failed to publish status change",
				zap.String("status", string(changed.To)),
				zap.Error(err),
			)
		}
	}
}
