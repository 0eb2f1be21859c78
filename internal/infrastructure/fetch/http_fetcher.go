// Package fetch downloads video bytes over plain HTTP
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// HTTPFetcher performs GET requests. Any non-2xx response is an upstream
// fetch error carrying the HTTP status.
type HTTPFetcher struct {
	client *http.Client
	logger *zap.Logger
}

// Ensure HTTPFetcher implements the outbound port
var _ outbound.VideoFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher whose requests are traced
func NewHTTPFetcher(timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("fetcher"),
	}
}

// Fetch reads the whole response body into memory
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := f.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read video body: %w", err)
	}

	f.logger.Debug("Fetched video", zap.Int("bytes", len(data)))
	return data, nil
}

// Download streams the response body into w
func (f *HTTPFetcher) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	body, err := f.open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("failed to download video: %w", err)
	}
	return n, nil
}

func (f *HTTPFetcher) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("invalid video url: %v", err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, apperrors.NewUpstreamFetchError(resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}
