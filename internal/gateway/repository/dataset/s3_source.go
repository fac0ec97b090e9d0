// Package dataset fetches the read-only SQLite snapshot the churn store is
// opened on.
package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
}

// S3Source downloads the snapshot object from an S3-compatible bucket.
type S3Source struct {
	client     *minio.Client
	bucketName string
	objectName string
	logger     *zap.Logger
}

func NewS3Source(cfg S3Config, logger *zap.Logger) (*S3Source, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	object := strings.TrimLeft(strings.TrimSpace(cfg.Object), "/")
	if object == "" {
		object = "data.db"
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Source{
		client:     client,
		bucketName: bucket,
		objectName: object,
		logger:     logger,
	}, nil
}

// Fetch writes the snapshot to dest unless dest already holds the same
// revision.
func (s *S3Source) Fetch(ctx context.Context, dest string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("source is nil")
	}
	info, err := s.client.StatObject(ctx, s.bucketName, s.objectName, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return fmt.Errorf("dataset s3://%s/%s not found: %w", s.bucketName, s.objectName, err)
		}
		return fmt.Errorf("stat dataset: %w", err)
	}

	if local, err := os.Stat(dest); err == nil && upToDate(local.Size(), local.ModTime(), info.Size, info.LastModified) {
		s.logger.Info("dataset snapshot up to date", zap.String("path", dest), zap.Int64("bytes", local.Size()))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	start := time.Now()
	if err := s.client.FGetObject(ctx, s.bucketName, s.objectName, dest, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}
	s.logger.Info("dataset snapshot downloaded",
		zap.String("bucket", s.bucketName),
		zap.String("object", s.objectName),
		zap.String("path", dest),
		zap.Int64("bytes", info.Size),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func upToDate(localSize int64, localMod time.Time, remoteSize int64, remoteMod time.Time) bool {
	return localSize == remoteSize && !localMod.Before(remoteMod)
}
