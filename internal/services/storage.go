package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/chachabrian/busbooking-backend/internal/config"
	"github.com/sirupsen/logrus"
)

// Storage archives generated documents and returns where they were written.
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3Storage uploads to a private bucket and returns the s3:// object URI.
type S3Storage struct {
	uploader *s3manager.Uploader
	bucket   string
}

// LocalStorage writes under dir. Nothing serves the directory over HTTP.
type LocalStorage struct {
	dir string
}

// InitStorage picks S3 when AWS credentials are configured and falls back to
// the local upload directory otherwise.
func InitStorage(cfg config.Config) (Storage, error) {
	if cfg.S3Enabled() {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWSAccessKeyID,
				cfg.AWSSecretAccessKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		logrus.WithField("bucket", cfg.AWSS3Bucket).Info("using S3 storage for tickets")
		return &S3Storage{uploader: s3manager.NewUploader(sess), bucket: cfg.AWSS3Bucket}, nil
	}

	logrus.Warn("AWS S3 not configured, storing tickets on local disk")
	return NewLocalStorage(cfg.UploadDir)
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *S3Storage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *LocalStorage) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path, nil
}
