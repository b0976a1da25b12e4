// Package archive copies completed upload files to S3-compatible object
// storage for long-term retention.
package archive

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/harborml/longshore/internal/logger"
	"github.com/harborml/longshore/internal/telemetry"
)

// Config contains S3 archive settings.
type Config struct {
	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region is the AWS region.
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint overrides the S3 endpoint for S3-compatible storage
	// (MinIO, Ceph, LocalStack). Empty uses AWS.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// KeyPrefix is prepended to all object keys.
	// Example: "longshore/" results in keys like "longshore/<upload-id>/file"
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`

	// AccessKeyID and SecretAccessKey are static credentials. When empty,
	// the default AWS credential chain applies (env, shared config, IAM).
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	// ForcePathStyle uses path-style addressing, required by most
	// S3-compatible servers.
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`

	// MaxRetries is the number of retry attempts for transient errors.
	// Default: 3
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// InitialBackoff is the delay before the first retry; subsequent
	// retries back off exponentially up to MaxBackoff.
	// Default: 100ms
	InitialBackoff time.Duration `mapstructure:"initial_backoff" yaml:"initial_backoff"`

	// MaxBackoff caps the retry delay.
	// Default: 2s
	MaxBackoff time.Duration `mapstructure:"max_backoff" yaml:"max_backoff"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 2 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("archive bucket is required")
	}
	if c.Region == "" && c.Endpoint == "" {
		return fmt.Errorf("archive requires a region or an endpoint")
	}
	return nil
}

// Uploader copies local files into an S3 bucket.
//
// Safe for concurrent use.
type Uploader struct {
	client    *s3.Client
	bucket    string
	keyPrefix string

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New builds an S3 client from the configuration and verifies bucket
// access. The bucket must already exist.
func New(ctx context.Context, cfg Config) (*Uploader, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &Uploader{
		client:         client,
		bucket:         cfg.Bucket,
		keyPrefix:      cfg.KeyPrefix,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
	}, nil
}

// Bucket returns the configured bucket name.
func (u *Uploader) Bucket() string {
	return u.bucket
}

// ObjectKey returns the full object key for an upload, applying the
// configured prefix. Keys group by upload id so multiple uploads of the
// same filename never collide.
func (u *Uploader) ObjectKey(uploadID, filename string) string {
	return u.keyPrefix + uploadID + "/" + filename
}

// Upload copies the file at path to the bucket under key and returns the
// object URI. Transient errors are retried with exponential backoff.
func (u *Uploader) Upload(ctx context.Context, path, key string) (uri string, err error) {
	ctx, span := telemetry.StartArchiveSpan(ctx, "upload", key,
		telemetry.Bucket(u.bucket),
		telemetry.StoreType("s3"))
	defer span.End()
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for archive: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat file for archive: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := u.calculateBackoff(attempt - 1)
			logger.Debug("archive upload retrying",
				"backoff", backoff.String(),
				logger.Attempt(attempt),
				"key", key,
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}

			// PutObject consumes the reader; rewind before retrying.
			if _, err := file.Seek(0, 0); err != nil {
				return "", fmt.Errorf("failed to rewind file for retry: %w", err)
			}
		}

		_, lastErr = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(u.bucket),
			Key:           aws.String(key),
			Body:          file,
			ContentLength: aws.Int64(info.Size()),
		})
		if lastErr == nil {
			return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
		}

		if !isRetryableError(lastErr) {
			return "", fmt.Errorf("failed to archive to S3: %w", lastErr)
		}
	}

	return "", fmt.Errorf("failed to archive to S3 after %d attempts: %w", u.maxRetries+1, lastErr)
}

// calculateBackoff returns the backoff duration for a given attempt.
func (u *Uploader) calculateBackoff(attempt int) time.Duration {
	backoff := float64(u.initialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > float64(u.maxBackoff) {
		backoff = float64(u.maxBackoff)
	}
	return time.Duration(backoff)
}

// isRetryableError returns true if the error is transient and the operation
// should be retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Network errors are retryable
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "Throttling", "ThrottlingException", "RequestThrottled", "SlowDown":
			return true
		case "InternalError", "ServiceUnavailable":
			return true
		case "NoSuchBucket", "AccessDenied", "Forbidden", "InvalidRequest":
			return false
		}
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "500")
}
