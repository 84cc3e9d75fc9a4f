// Package storage archives purchased label documents in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/shiprelay/backend/internal/domain/shipping"
	"github.com/shiprelay/backend/internal/infrastructure/config"
)

// objectAPI is the part of *s3.Client the archive uses
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3LabelArchive stores label documents under <prefix>/<rate_id>/<transaction_id>.<ext>.
// Works with AWS S3 and S3-compatible stores such as MinIO.
type S3LabelArchive struct {
	client    objectAPI
	bucket    string
	keyPrefix string
	logger    *zap.Logger
}

// Option configures the archive
type Option func(*S3LabelArchive)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *S3LabelArchive) {
		a.logger = logger
	}
}

// NewS3LabelArchive builds an archive from storage configuration. Without
// static keys the default AWS credential chain is used.
func NewS3LabelArchive(ctx context.Context, cfg config.StorageConfig, opts ...Option) (*S3LabelArchive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, errors.New("storage access key and secret key must be set together")
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newS3LabelArchive(client, cfg.Bucket, cfg.KeyPrefix, opts...), nil
}

func newS3LabelArchive(client objectAPI, bucket, keyPrefix string, opts ...Option) *S3LabelArchive {
	a := &S3LabelArchive{
		client:    client,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EnsureBucket creates the bucket if it does not exist
func (a *S3LabelArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}

	a.logger.Info("Creating label archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Store uploads a label document and returns its object key
func (a *S3LabelArchive) Store(ctx context.Context, label *shipping.Label, data []byte, contentType string) (string, error) {
	if label == nil || label.TransactionID == "" {
		return "", errors.New("label transaction id is required")
	}
	if len(data) == 0 {
		return "", errors.New("label document is empty")
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	key := a.ObjectKey(label, contentType)
	metadata := map[string]string{
		"rate-id":        label.RateID,
		"transaction-id": label.TransactionID,
	}
	if label.TrackingNumber != "" {
		metadata["tracking-number"] = label.TrackingNumber
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload label %s: %w", key, err)
	}

	a.logger.Info("Archived label document",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)))
	return key, nil
}

// ObjectKey returns the key a label document is stored under
func (a *S3LabelArchive) ObjectKey(label *shipping.Label, contentType string) string {
	rateID := label.RateID
	if rateID == "" {
		rateID = "unknown-rate"
	}
	name := label.TransactionID + extensionFor(contentType)
	if a.keyPrefix == "" {
		return path.Join(rateID, name)
	}
	return path.Join(a.keyPrefix, rateID, name)
}

// Bucket returns the bucket name
func (a *S3LabelArchive) Bucket() string {
	return a.bucket
}

func extensionFor(contentType string) string {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(mediaType) {
	case "image/png":
		return ".png"
	case "application/zpl", "text/plain", "application/x-zpl":
		return ".zpl"
	default:
		return ".pdf"
	}
}

func normalizeEndpoint(endpoint string, useSSL bool) string {
	if endpoint == "" {
		return ""
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

var _ shipping.LabelArchive = (*S3LabelArchive)(nil)
