// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockGenerativeModel provides a mock implementation of GenerativeModel
type MockGenerativeModel struct {
	mock.Mock
}

// GenerateFromVideo records the call and returns the configured response
func (m *MockGenerativeModel) GenerateFromVideo(ctx context.Context, req outbound.VideoPrompt) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// Name returns a fixed provider name
func (m *MockGenerativeModel) Name() string {
	return "mock-model"
}

// MockVideoFetcher provides a mock implementation of VideoFetcher
type MockVideoFetcher struct {
	mock.Mock
}

// Fetch returns the configured bytes
func (m *MockVideoFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if data := args.Get(0); data != nil {
		return data.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// Download writes the configured bytes to w
func (m *MockVideoFetcher) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	args := m.Called(ctx, url, w)
	if args.Error(1) != nil {
		return 0, args.Error(1)
	}
	data := args.Get(0).([]byte)
	n, err := w.Write(data)
	return int64(n), err
}

// MockBlobStore provides a mock implementation of BlobStore
type MockBlobStore struct {
	mock.Mock
}

// PresignGet returns the configured URL
func (m *MockBlobStore) PresignGet(ctx context.Context, path string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, path, expiry)
	return args.String(0), args.Error(1)
}

// Stat returns the configured object info
func (m *MockBlobStore) Stat(ctx context.Context, path string) (outbound.ObjectInfo, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(outbound.ObjectInfo), args.Error(1)
}

// Ping returns the configured error
func (m *MockBlobStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// RecordingNotifier collects status events in memory
type RecordingNotifier struct {
	mu     sync.Mutex
	events []outbound.StatusEvent
}

// Notify records the event
func (r *RecordingNotifier) Notify(ctx context.Context, event outbound.StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events
func (r *RecordingNotifier) Events() []outbound.StatusEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]outbound.StatusEvent(nil), r.events...)
}

// MockAnalysisService provides a mock implementation of VideoAnalysisService
type MockAnalysisService struct {
	mock.Mock
}

// Run records the trigger
func (m *MockAnalysisService) Run(ctx context.Context, trigger inbound.Trigger) error {
	args := m.Called(ctx, trigger)
	return args.Error(0)
}

// GetVideo returns the configured video
func (m *MockAnalysisService) GetVideo(ctx context.Context, id string) (*video.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.Video), args.Error(1)
}

// MockPreScreenService provides a mock implementation of PreScreenService
type MockPreScreenService struct {
	mock.Mock
}

// ScreenAndAnalyze returns the configured outcome
func (m *MockPreScreenService) ScreenAndAnalyze(ctx context.Context, data []byte) (analysis.Outcome, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(analysis.Outcome), args.Error(1)
}
