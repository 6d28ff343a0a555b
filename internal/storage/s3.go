// Package storage is the object storage collaborator: post photos live in
// an S3 bucket (or an S3-compatible endpoint) and are addressed by their
// public URL.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	awsconfig "gamereview-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage stores objects in a single S3 bucket.
type S3Storage struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// New creates a new S3 storage client from the aws config section.
func New(ctx context.Context, cfg awsconfig.AWSConfig) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:   client,
		bucket:   cfg.S3Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// Upload stores data under key and returns the public URL.
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/webp"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.publicURL(key), nil
}

// Delete removes the object behind a previously returned public URL.
func (s *S3Storage) Delete(ctx context.Context, objectURL string) error {
	key, err := s.keyFromURL(objectURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Storage) keyFromURL(objectURL string) (string, error) {
	u, err := url.Parse(objectURL)
	if err != nil {
		return "", fmt.Errorf("invalid object url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	// Path-style URLs carry the bucket as the first path segment.
	key = strings.TrimPrefix(key, s.bucket+"/")
	if key == "" {
		return "", fmt.Errorf("object url %q has no key", objectURL)
	}
	return key, nil
}
