// Package gemini adapts the Google Gemini API to the GenerativeModel port
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const instrumentationName = "github.com/alchemorsel/reelchef/internal/infrastructure/ai/gemini"

// Config configures the client
type Config struct {
	APIKey         string
	Model          string
	Temperature    float32
	MaxTokens      int32
	RequestsPerMin int
	Timeout        time.Duration
}

// contentGenerator is the slice of *genai.GenerativeModel the client uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client sends multimodal prompts to Gemini. It does not retry; retries are
// composed around it by the caller.
type Client struct {
	client    *genai.Client
	model     contentGenerator
	modelName string
	limiter   *rate.Limiter
	timeout   time.Duration
	tracer    trace.Tracer
	tokens    metric.Int64Counter
	logger    *zap.Logger
}

// Ensure Client implements the outbound port
var _ outbound.GenerativeModel = (*Client)(nil)

// NewClient creates a Gemini client authenticated with an API key
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigurationError("ai.api_key is not set")
	}

	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := gc.GenerativeModel(cfg.Model)
	configureModel(model, cfg)

	c, err := newClient(model, cfg, logger)
	if err != nil {
		gc.Close()
		return nil, err
	}
	c.client = gc

	logger.Info("Gemini client initialized", zap.String("model", cfg.Model))
	return c, nil
}

func newClient(model contentGenerator, cfg Config, logger *zap.Logger) (*Client, error) {
	meter := otel.Meter(instrumentationName)
	tokens, err := meter.Int64Counter("reelchef.ai.tokens",
		metric.WithDescription("Tokens consumed by generative model calls"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token counter: %w", err)
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMin > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMin))
		burst = cfg.RequestsPerMin
	}

	return &Client{
		model:     model,
		modelName: cfg.Model,
		limiter:   rate.NewLimiter(limit, burst),
		timeout:   cfg.Timeout,
		tracer:    otel.Tracer(instrumentationName),
		tokens:    tokens,
		logger:    logger.Named("gemini"),
	}, nil
}

func configureModel(model *genai.GenerativeModel, cfg Config) {
	if cfg.Temperature > 0 {
		model.SetTemperature(cfg.Temperature)
	}
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxTokens)
	}
}

// Name returns the provider name used in errors and logs
func (c *Client) Name() string {
	return "gemini"
}

// GenerateFromVideo sends the inline video followed by the text prompt and
// returns the concatenated text of the first candidate
func (c *Client) GenerateFromVideo(ctx context.Context, req outbound.VideoPrompt) (string, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.generate", trace.WithAttributes(
		attribute.String("ai.model", c.modelName),
		attribute.Int("ai.payload_bytes", len(req.Data)),
	))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx,
		genai.Blob{MIMEType: req.MIMEType, Data: req.Data},
		genai.Text(req.Prompt),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", apperrors.NewExternalServiceError(c.Name(), err)
	}

	c.recordUsage(ctx, resp)

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		err := apperrors.NewEmptyAIResponseError(c.Name())
		if len(resp.Candidates) > 0 {
			err.WithMetadata("finish_reason", fmt.Sprint(resp.Candidates[0].FinishReason))
		}
		span.SetStatus(codes.Error, err.Message)
		return "", err
	}

	span.SetAttributes(attribute.Int("ai.response_chars", len(text)))
	return text, nil
}

func (c *Client) recordUsage(ctx context.Context, resp *genai.GenerateContentResponse) {
	if resp == nil || resp.UsageMetadata == nil {
		return
	}
	u := resp.UsageMetadata
	attrs := func(kind string) metric.AddOption {
		return metric.WithAttributes(attribute.String("ai.model", c.modelName), attribute.String("kind", kind))
	}
	c.tokens.Add(ctx, int64(u.PromptTokenCount), attrs("prompt"))
	c.tokens.Add(ctx, int64(u.CandidatesTokenCount), attrs("completion"))

	c.logger.Debug("Gemini usage",
		zap.Int32("prompt_tokens", u.PromptTokenCount),
		zap.Int32("completion_tokens", u.CandidatesTokenCount),
		zap.Int32("total_tokens", u.TotalTokenCount),
	)
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// Close releases the underlying connection
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
