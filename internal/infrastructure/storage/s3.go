package storage

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

// S3Store reads videos from an S3 bucket
type S3Store struct {
	client *s3.S3
	bucket string
	logger *zap.Logger
}

// Ensure S3Store implements the outbound port
var _ outbound.BlobStore = (*S3Store)(nil)

// NewS3Store creates an S3 store. Static credentials are used when set;
// otherwise the default AWS credential chain applies.
func NewS3Store(cfg config.StorageConfig, logger *zap.Logger) (*S3Store, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("s3", err)
	}

	logger.Info("S3 storage initialized", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))

	return &S3Store{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		logger: logger.Named("s3"),
	}, nil
}

// PresignGet returns a GET URL for path valid for expiry
func (s *S3Store) PresignGet(ctx context.Context, path string, expiry time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	req.SetContext(ctx)

	signed, err := req.Presign(expiry)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Stat returns size and content type of path
func (s *S3Store) Stat(ctx context.Context, path string) (outbound.ObjectInfo, error) {
	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isS3NotFound(err) {
			return outbound.ObjectInfo{}, apperrors.NewNotFoundError("object " + path)
		}
		return outbound.ObjectInfo{}, apperrors.NewExternalServiceError("s3", err)
	}

	return outbound.ObjectInfo{
		Path:        path,
		Size:        aws.Int64Value(out.ContentLength),
		ContentType: aws.StringValue(out.ContentType),
	}, nil
}

// Ping checks the bucket is reachable
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func isS3NotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode() == http.StatusNotFound
	}
	return false
}
