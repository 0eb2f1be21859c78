// Package storage provides blob store adapters that hand out presigned read
// URLs for uploaded videos
package storage

import (
	"fmt"

	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"go.uber.org/zap"
)

// New creates the blob store selected by cfg.Provider
func New(cfg config.StorageConfig, logger *zap.Logger) (outbound.BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, apperrors.NewConfigurationError("storage.bucket is not set")
	}

	switch cfg.Provider {
	case "s3":
		store, err := NewS3Store(cfg, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		store, err := NewMinioStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("unknown storage provider %q", cfg.Provider))
	}
}
