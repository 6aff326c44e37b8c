// Package storage keeps uploaded document contents in an S3-compatible
// bucket (AWS S3, MinIO or Supabase Storage's S3 endpoint).
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"agrodesk/internal/config"
	"agrodesk/internal/errors"
	"agrodesk/ports"
)

const defaultExpiry = 15 * time.Minute

// S3Store implements ports.ObjectStore on a single bucket
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	// publicBase, when set, is used to build unsigned links
	publicBase string
}

var _ ports.ObjectStore = (*S3Store)(nil)

// NewS3Store builds the client from storage configuration. Static keys
// are used when present; otherwise the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.ConfigInvalid("storage bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.ExternalServiceError("storage", fmt.Errorf("failed to load aws config: %w", err))
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Store(client, cfg.Bucket, cfg.PublicBaseURL), nil
}

func newS3Store(client *s3.Client, bucket, publicBase string) *S3Store {
	return &S3Store{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Bucket returns the bucket name
func (s *S3Store) Bucket() string { return s.bucket }

// Put uploads body under key
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: body}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return errors.ExternalServiceError("storage", fmt.Errorf("failed to upload %s: %w", key, err))
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *S3Store) Remove(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return errors.ExternalServiceError("storage", fmt.Errorf("failed to remove %s: %w", key, err))
	}
	return nil
}

// URL returns a public link when a public base is configured, otherwise
// a presigned GET valid for expiry
func (s *S3Store) URL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s.publicBase != "" {
		return s.publicBase + "/" + url.PathEscape(s.bucket) + "/" + escapeKey(key), nil
	}
	if expiry <= 0 {
		expiry = defaultExpiry
	}
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key},
		func(po *s3.PresignOptions) { po.Expires = expiry })
	if err != nil {
		return "", errors.ExternalServiceError("storage", fmt.Errorf("failed to presign %s: %w", key, err))
	}
	return out.URL, nil
}

// Get streams an object back; used by the admin CLI and tests
func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return nil, errors.ExternalServiceError("storage", fmt.Errorf("failed to download %s: %w", key, err))
	}
	return out.Body, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
