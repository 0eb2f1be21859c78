// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"io"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/video"
)

// VideoRepository persists video records. FindByID returns
// video.ErrVideoNotFound when the record does not exist.
type VideoRepository interface {
	FindByID(ctx context.Context, id string) (*video.Video, error)
	Save(ctx context.Context, v *video.Video) error
	FindByStatus(ctx context.Context, status video.Status, limit int) ([]*video.Video, error)
	FindStuck(ctx context.Context, cutoff time.Time, limit int) ([]*video.Video, error)
}

// AnalysisCache maps a video id to a previously computed analysis.
// Get returns (nil, nil) on a miss. Entries never expire.
type AnalysisCache interface {
	Get(ctx context.Context, videoID string) (*analysis.RecipeAnalysis, error)
	Put(ctx context.Context, videoID string, a analysis.RecipeAnalysis) error
	Delete(ctx context.Context, videoID string) error
}

// ObjectInfo describes a stored blob
type ObjectInfo struct {
	Path        string
	Size        int64
	ContentType string
}

// BlobStore exposes the parts of the object store the pipeline needs
type BlobStore interface {
	PresignGet(ctx context.Context, path string, expiry time.Duration) (string, error)
	Stat(ctx context.Context, path string) (ObjectInfo, error)
	Ping(ctx context.Context) error
}

// VideoFetcher downloads video bytes over HTTP. Non-2xx responses are errors.
type VideoFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// VideoPrompt is one multimodal request: inline video bytes plus a text instruction
type VideoPrompt struct {
	MIMEType string
	Data     []byte
	Prompt   string
}

// GenerativeModel is the external AI endpoint
type GenerativeModel interface {
	GenerateFromVideo(ctx context.Context, req VideoPrompt) (string, error)
	Name() string
}

// StatusEvent is published whenever a video changes status
type StatusEvent struct {
	VideoID string       `json:"videoId"`
	Status  video.Status `json:"status"`
	Error   string       `json:"error,omitempty"`
	At      time.Time    `json:"at"`
}

// StatusNotifier fans status changes out to interested clients
type StatusNotifier interface {
	Notify(ctx context.Context, event StatusEvent) error
}

// PipelineMetrics records pipeline observations
type PipelineMetrics interface {
	ObserveRun(outcome string, duration time.Duration)
	RecordCacheLookup(hit bool)
	ObserveChunks(count int)
	ObserveAICall(operation, outcome string, duration time.Duration)
	RecordAIRetry(operation string)
	RecordPreScreen(passed bool)
}
