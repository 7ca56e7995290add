// Package storage wraps an S3-compatible object store (Cloudflare R2 in
// production) behind the small surface the pipeline needs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"

	"github.com/loopreel/loopreel/internal/config"
)

// BlobStore is the object-store surface used by the pipeline and handlers.
// Fakes implement it in tests.
type BlobStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, keyOrURL string) error
}

type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Store(ctx context.Context, conf config.Config) (*S3Store, error) {
	if !conf.StorageConfigured() {
		return nil, fmt.Errorf("object storage is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.StorageRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.StorageAccessKey, conf.StorageSecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(conf.StorageEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:    client,
		bucket:    conf.StorageBucket,
		publicURL: strings.TrimSuffix(conf.StoragePublicURL, "/"),
	}, nil
}

// Put uploads a blob and returns its public URL. No retry here; the pipeline
// and the queue own failure policy.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	slog.Info("uploaded object", "key", key, "size", humanize.Bytes(uint64(len(body))), "content_type", contentType)
	return s.PublicURL(key), nil
}

// Delete removes a blob by key or full URL. A missing object is success.
func (s *S3Store) Delete(ctx context.Context, keyOrURL string) error {
	key := s.keyFromURL(keyOrURL)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the stable public URL for a key.
func (s *S3Store) PublicURL(key string) string {
	return s.publicURL + "/" + key
}

func (s *S3Store) keyFromURL(keyOrURL string) string {
	if !strings.Contains(keyOrURL, "://") {
		return keyOrURL
	}
	u, err := url.Parse(keyOrURL)
	if err != nil {
		return keyOrURL
	}
	key := strings.TrimPrefix(u.Path, "/")
	// Path-style URLs carry the bucket as the first path segment.
	key = strings.TrimPrefix(key, s.bucket+"/")
	return key
}
