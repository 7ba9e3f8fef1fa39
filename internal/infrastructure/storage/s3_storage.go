// Package storage provides object storage implementations for file operations.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	scoringapp "github.com/resumescore/backend/internal/application/scoring"
	infraconfig "github.com/resumescore/backend/internal/infrastructure/config"
)

// Ensure S3ResumeArchive implements ResumeArchiver
var _ scoringapp.ResumeArchiver = (*S3ResumeArchive)(nil)

// S3ResumeArchive stores uploaded resume files using the AWS S3 SDK v2.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, RustFS, etc.)
type S3ResumeArchive struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	keyPrefix         string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3ResumeArchiveOption is a functional option for configuring S3ResumeArchive
type S3ResumeArchiveOption func(*S3ResumeArchive)

// WithLogger sets a custom logger for S3ResumeArchive
func WithLogger(logger *zap.Logger) S3ResumeArchiveOption {
	return func(s *S3ResumeArchive) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3ResumeArchiveOption {
	return func(s *S3ResumeArchive) {
		s.presignExpiration = d
	}
}

// WithKeyPrefix sets the object key prefix for archived resumes
func WithKeyPrefix(prefix string) S3ResumeArchiveOption {
	return func(s *S3ResumeArchive) {
		s.keyPrefix = strings.Trim(prefix, "/")
	}
}

// NewS3ResumeArchive creates a new S3ResumeArchive from configuration.
// It supports any S3-compatible storage backend.
func NewS3ResumeArchive(cfg *infraconfig.StorageConfig, opts ...S3ResumeArchiveOption) (*S3ResumeArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}

	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (not used for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	// An empty endpoint means AWS S3 proper; anything else is an
	// S3-compatible backend reached at that address
	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3ResumeArchive{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		keyPrefix:         "resumes",
		presignExpiration: cfg.PresignExpiry,
		logger:            zap.NewNop(),
	}

	for _, opt := range opts {
		opt(archive)
	}

	if archive.presignExpiration == 0 {
		archive.presignExpiration = 15 * time.Minute
	}

	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3ResumeArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Ignore "BucketAlreadyOwnedByYou" error (race condition)
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.logger.Info("Storage bucket created successfully", zap.String("bucket", s.bucket))
	return nil
}

// Archive stores an uploaded resume and returns its object key
func (s *S3ResumeArchive) Archive(ctx context.Context, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("resume data is empty")
	}

	key := s.buildKey(fileName)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeFor(fileName)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive resume: %w", err)
	}

	return key, nil
}

// buildKey derives a collision-free object key from the upload file name
func (s *S3ResumeArchive) buildKey(fileName string) string {
	name := sanitizeFileName(fileName)
	now := time.Now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s-%s", s.keyPrefix, now.Year(), now.Month(), uuid.New(), name)
}

// sanitizeFileName strips path components and characters unsafe in object keys
func sanitizeFileName(fileName string) string {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "." || name == "/" || name == "" {
		return "resume"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// contentTypeFor maps an upload file name to its archive content type
func contentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// GenerateDownloadURL generates a presigned URL for downloading an archived resume.
// The URL is valid for the configured presignExpiration duration.
func (s *S3ResumeArchive) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	if expiresIn <= 0 {
		expiresIn = s.presignExpiration
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}

	expiresAt := time.Now().Add(expiresIn)
	return presignReq.URL, expiresAt, nil
}

// DeleteObject deletes an archived resume from storage.
func (s *S3ResumeArchive) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// ObjectExists checks if an archived resume exists in storage.
func (s *S3ResumeArchive) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// Some S3-compatible services report missing objects differently
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// GetBucket returns the bucket name
func (s *S3ResumeArchive) GetBucket() string {
	return s.bucket
}
