package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ReportStorage persists generated reports and returns where they live.
type ReportStorage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// S3Config holds the AWS settings for report uploads.
type S3Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// S3Storage uploads reports to an S3 bucket.
type S3Storage struct {
	uploader *s3manager.Uploader
	bucket   string
	region   string
}

func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey,
			"", // Token (optional)
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	log.Println("AWS S3 report storage initialized successfully")
	return &S3Storage{
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	// Construct the public URL manually
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// LocalStorage writes reports under a directory on disk.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	log.Printf("AWS S3 not configured. Writing reports to %s", dir)
	return &LocalStorage{dir: dir}, nil
}

func (l *LocalStorage) Upload(_ context.Context, key string, body []byte, _ string) (string, error) {
	clean := filepath.Clean("/" + key)
	path := filepath.Join(l.dir, strings.TrimPrefix(clean, "/"))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return "file://" + path, nil
}
