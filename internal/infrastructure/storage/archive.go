// Package storage archives generated documents in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrEmptyKey is returned when an object key is missing
var ErrEmptyKey = errors.New("storage key is required")

// Archive stores generated exports and receipts
type Archive interface {
	// Put uploads data and returns the full object key
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	// DownloadURL returns a presigned URL for a stored object
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
	// Enabled reports whether documents are actually persisted
	Enabled() bool
}

const defaultPresignExpiration = 15 * time.Minute

// NewArchive returns an S3 archive when storage is enabled, a no-op archive otherwise
func NewArchive(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Archive, error) {
	if !cfg.Enabled {
		return NopArchive{}, nil
	}
	return NewS3Archive(ctx, cfg, logger)
}

// S3Archive writes objects to any S3-compatible store (AWS S3, MinIO, RustFS)
type S3Archive struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	prefix        string
	logger        *zap.Logger
}

// NewS3Archive builds the S3 client from static credentials
func NewS3Archive(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("storage credentials are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint *string
	if cfg.Endpoint != "" {
		ep := cfg.Endpoint
		if !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
			ep = "https://" + ep
		}
		if _, err := url.Parse(ep); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
		endpoint = aws.String(ep)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	})

	return &S3Archive{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		logger:        logger,
	}, nil
}

// Enabled always reports true
func (a *S3Archive) Enabled() bool { return true }

// Bucket returns the bucket name
func (a *S3Archive) Bucket() string { return a.bucket }

func (a *S3Archive) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if a.prefix == "" {
		return key
	}
	return path.Join(a.prefix, key)
}

// EnsureBucket creates the bucket if it does not exist
func (a *S3Archive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads data under the configured prefix
func (a *S3Archive) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	full := a.objectKey(key)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(full),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	a.logger.Debug("Archived document",
		zap.String("bucket", a.bucket),
		zap.String("key", full),
		zap.Int("size", len(data)),
	)
	return full, nil
}

// DownloadURL presigns a GET for an archived object key as returned by Put
func (a *S3Archive) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}

	req, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, nil
}

// NopArchive discards documents
type NopArchive struct{}

// Put returns the key unchanged without storing anything
func (NopArchive) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}

// DownloadURL is not available without storage
func (NopArchive) DownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("document archive is disabled")
}

// Enabled always reports false
func (NopArchive) Enabled() bool { return false }

// ExportKey builds a dated object key such as exports/sales/2026/03/sales-20260314-093000.xlsx
func ExportKey(kind, ext string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("exports/%s/%s/%s-%s.%s",
		kind, at.Format("2006/01"), kind, at.Format("20060102-150405"), strings.TrimPrefix(ext, "."))
}
