package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ghostofweb/portfolio-api/internal/config"
	"github.com/google/uuid"
)

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// S3StorageService stores blog cover images in an S3 bucket.
type S3StorageService struct {
	client *s3.Client
	cfg    config.StorageConfig
	logger *slog.Logger
}

func NewS3StorageService(cfg config.StorageConfig, logger *slog.Logger) (*S3StorageService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3StorageService{client: client, cfg: cfg, logger: logger}, nil
}

// storageKey namespaces uploads by date so the bucket stays browsable.
func (s *S3StorageService) storageKey(filename string) string {
	d := time.Now()
	return path.Join(s.cfg.KeyPrefix,
		fmt.Sprintf("%d/%02d/%v%s", d.Year(), d.Month(), uuid.New(), path.Ext(filename)))
}

func (s *S3StorageService) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key := s.storageKey(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("failed to upload object",
			slog.String("key", key),
			slog.Any("error", err))
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	url := s.publicURL(key)
	s.logger.Info("object uploaded", slog.String("key", key))
	return url, nil
}

func (s *S3StorageService) publicURL(key string) string {
	if s.cfg.BaseEndpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.cfg.BaseEndpoint, s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
