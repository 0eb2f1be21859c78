package analysis

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
)

// DefaultPresignExpiry is how long a presigned read URL stays valid
const DefaultPresignExpiry = 15 * time.Minute

// VideoSource loads the bytes of the video a run is about
type VideoSource interface {
	Load(ctx context.Context, v *video.Video, trigger inbound.Trigger) ([]byte, error)
}

// RemoteSource downloads the video over HTTP. Stored objects are read through
// a short-lived presigned URL; otherwise the trigger's or record's public URL
// is fetched directly.
type RemoteSource struct {
	store   outbound.BlobStore
	fetcher outbound.VideoFetcher
	expiry  time.Duration
}

// NewRemoteSource creates a remote source. store may be nil when every video
// carries a public URL.
func NewRemoteSource(store outbound.BlobStore, fetcher outbound.VideoFetcher, expiry time.Duration) *RemoteSource {
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &RemoteSource{store: store, fetcher: fetcher, expiry: expiry}
}

// Load resolves a URL for the video and fetches it
func (s *RemoteSource) Load(ctx context.Context, v *video.Video, trigger inbound.Trigger) ([]byte, error) {
	target, err := s.ResolveURL(ctx, v, trigger)
	if err != nil {
		return nil, err
	}
	return s.fetcher.Fetch(ctx, target)
}

// ResolveURL returns the URL the video bytes can be downloaded from
func (s *RemoteSource) ResolveURL(ctx context.Context, v *video.Video, trigger inbound.Trigger) (string, error) {
	storagePath := v.StoragePath
	if storagePath == "" && trigger.Source == inbound.TriggerStorageFinalize {
		storagePath = trigger.ObjectName
	}
	if storagePath != "" && s.store != nil {
		signed, err := s.store.PresignGet(ctx, storagePath, s.expiry)
		if err != nil {
			return "", apperrors.NewExternalServiceError("blob store", err)
		}
		return signed, nil
	}

	for _, candidate := range []string{trigger.VideoURL, v.VideoURL} {
		if isHTTPURL(candidate) {
			return candidate, nil
		}
	}

	return "", apperrors.NewBadRequestError(fmt.Sprintf("video %s has no storage path or downloadable url", v.ID))
}

func isHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FileSource reads a video that was already downloaded to local disk
type FileSource struct {
	Path string
}

// Load reads the whole file
func (s FileSource) Load(_ context.Context, _ *video.Video, _ inbound.Trigger) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read scratch file: %w", err)
	}
	return data, nil
}
