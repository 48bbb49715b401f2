package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	appconfig "photo-gallery-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const signedURLTTL = time.Hour

// placeholder served in development when no object store is configured
const placeholderURL = "https://placehold.co/800x600/1a1a1a/ffffff?text=S3+Not+Configured"

// ObjectStore is the narrow object-storage surface the photo pipeline needs
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Copy(ctx context.Context, sourceKey, destKey string) error
	SignedURL(ctx context.Context, key string) (string, error)
}

// StorageService talks to S3: object writes, deletes, copies, streams and
// presigned retrieval URLs (cached by URLCache)
type StorageService struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	urlCache   *URLCache
	configured bool
	production bool
}

// NewStorageService creates the S3 client and verifies the bucket is
// reachable. In production a missing bucket configuration is an error; in
// development the service degrades to placeholder URLs.
func NewStorageService(ctx context.Context, cfg *appconfig.Config, urlCache *URLCache) (*StorageService, error) {
	svc := &StorageService{
		bucket:     cfg.AWS.S3Bucket,
		urlCache:   urlCache,
		configured: cfg.S3Configured(),
		production: cfg.IsProduction(),
	}

	if !svc.configured {
		if svc.production {
			return nil, fmt.Errorf("object storage is not configured")
		}
		return svc, nil
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.AWS.Region))
	if cfg.AWS.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	svc.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			o.UsePathStyle = true
		}
	})
	svc.presign = s3.NewPresignClient(svc.client)

	if _, err := svc.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(svc.bucket)}); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return nil, fmt.Errorf("bucket %q does not exist", svc.bucket)
		}
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	return svc, nil
}

func (s *StorageService) notConfigured() error {
	return fmt.Errorf("object storage is not configured")
}

// Upload stores an object
func (s *StorageService) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if !s.configured {
		return s.notConfigured()
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

// Delete removes an object
func (s *StorageService) Delete(ctx context.Context, key string) error {
	if !s.configured {
		return s.notConfigured()
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Copy duplicates an object within the bucket
func (s *StorageService) Copy(ctx context.Context, sourceKey, destKey string) error {
	if !s.configured {
		return s.notConfigured()
	}
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + sourceKey),
		Key:        aws.String(destKey),
	})
	if err != nil {
		return fmt.Errorf("failed to copy object %s to %s: %w", sourceKey, destKey, err)
	}
	return nil
}

// Stream returns the object body for streaming reads. The caller must close
// the returned reader.
func (s *StorageService) Stream(ctx context.Context, key string) (io.ReadCloser, error) {
	if !s.configured {
		return nil, s.notConfigured()
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return out.Body, nil
}

// SignedURL returns a time-limited retrieval URL for a key, served from the
// URL cache when possible. In development without object storage it returns a
// placeholder; the placeholder is never used once storage is configured.
func (s *StorageService) SignedURL(ctx context.Context, key string) (string, error) {
	if !s.configured {
		if s.production {
			return "", s.notConfigured()
		}
		return placeholderURL, nil
	}
	return s.urlCache.Get(ctx, key, s.presignGet)
}

func (s *StorageService) presignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = signedURLTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return req.URL, nil
}
