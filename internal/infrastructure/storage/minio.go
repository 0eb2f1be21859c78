package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStore reads videos from any S3-compatible endpoint through minio-go
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// Ensure MinioStore implements the outbound port
var _ outbound.BlobStore = (*MinioStore)(nil)

// NewMinioStore creates a MinIO store. The region is passed explicitly so
// presigning does not need a bucket location lookup.
func NewMinioStore(cfg config.StorageConfig, logger *zap.Logger) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	if endpoint == "" {
		return nil, apperrors.NewConfigurationError("storage.endpoint is required for minio")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	logger.Info("MinIO storage initialized",
		zap.String("endpoint", endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("ssl", cfg.UseSSL),
	)

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.Named("minio"),
	}, nil
}

// PresignGet returns a GET URL for path valid for expiry
func (s *MinioStore) PresignGet(ctx context.Context, path string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Stat returns size and content type of path
func (s *MinioStore) Stat(ctx context.Context, path string) (outbound.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return outbound.ObjectInfo{}, apperrors.NewNotFoundError("object " + path)
		}
		return outbound.ObjectInfo{}, apperrors.NewExternalServiceError("minio", err)
	}

	return outbound.ObjectInfo{
		Path:        path,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

// Ping checks the bucket exists
func (s *MinioStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}
