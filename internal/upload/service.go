// Package upload pushes generated fixture files to an S3-compatible bucket
// so downstream consumers can fetch datasets without access to the
// generator host. The local files stay in place; upload is a copy, not a
// move.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Content types by file extension for the files the generator produces.
var contentTypes = map[string]string{
	".csv":  "text/csv",
	".json": "application/json",
}

// Validation errors.
var (
	ErrMissingBucket    = errors.New("bucket name is required")
	ErrMissingAccessKey = errors.New("access key ID is required")
	ErrMissingSecretKey = errors.New("secret access key is required")
	ErrMissingEndpoint  = errors.New("endpoint is required")
	ErrUnsupportedFile  = errors.New("unsupported file extension")
)

// ServiceConfig holds configuration for the upload service.
type ServiceConfig struct {
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	// KeyPrefix is prepended to every object key, e.g. "fixtures".
	KeyPrefix string
}

// Service uploads generated files to an S3-compatible bucket.
type Service struct {
	s3Client   *s3.Client
	bucketName string
	keyPrefix  string
}

// NewService creates a new upload service with the given configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.BucketName == "" {
		return nil, ErrMissingBucket
	}
	if cfg.AccessKeyID == "" {
		return nil, ErrMissingAccessKey
	}
	if cfg.SecretAccessKey == "" {
		return nil, ErrMissingSecretKey
	}
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	// S3-compatible stores (R2, MinIO) want path-style addressing and an
	// explicit endpoint.
	s3Client := s3.New(s3.Options{
		Region: "auto",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
	})

	return &Service{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
		keyPrefix:  strings.Trim(cfg.KeyPrefix, "/"),
	}, nil
}

// ObjectKey derives the bucket key for a local file: the configured prefix,
// the run ID, and the file's base name.
func (s *Service) ObjectKey(runID, path string) (string, error) {
	base := filepath.Base(path)
	if _, ok := contentTypes[filepath.Ext(base)]; !ok {
		return "", ErrUnsupportedFile
	}

	parts := make([]string, 0, 3)
	if s.keyPrefix != "" {
		parts = append(parts, s.keyPrefix)
	}
	parts = append(parts, runID, base)
	return strings.Join(parts, "/"), nil
}

// UploadFile puts one local file into the bucket and returns its object key.
func (s *Service) UploadFile(ctx context.Context, runID, path string) (string, error) {
	key, err := s.ObjectKey(runID, path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypes[filepath.Ext(path)]),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}

	return key, nil
}
