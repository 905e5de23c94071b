package storage

import (
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/tags"
)

// Config holds object store connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// BaseURL overrides the public URL prefix; defaults to the endpoint.
	BaseURL string
}

// MinioStore talks to any S3-compatible bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinioStore(ctx context.Context, cfg Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to probe bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *MinioStore) Put(ctx context.Context, in PutInput) error {
	opts := minio.PutObjectOptions{ContentType: in.ContentType}
	if len(in.Tags) > 0 {
		t, err := tags.NewTags(in.Tags, true)
		if err != nil {
			return fmt.Errorf("invalid object tags: %w", err)
		}
		opts.UserTags = t.ToMap()
	}

	if _, err := s.client.PutObject(ctx, s.bucket, in.Key, in.Reader, in.Size, opts); err != nil {
		return fmt.Errorf("failed to store object %q: %w", in.Key, err)
	}
	return nil
}

func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %q: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %q: %w", key, err)
	}
	return true, nil
}

func (s *MinioStore) PublicURL(key string) string {
	return s.baseURL + "/" + url.PathEscape(key)
}
