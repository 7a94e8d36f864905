package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/evenbre/fmio/internal/logger"
)

// S3MirrorConfig configures the S3 mirror.
type S3MirrorConfig struct {
	// Region is the AWS region of the bucket
	Region string `mapstructure:"region"`

	// Bucket is the S3 bucket name; it must already exist
	Bucket string `mapstructure:"bucket"`

	// KeyPrefix is an optional prefix for all object keys
	// Example: "drogon/" results in keys like "drogon/realization-0/..."
	KeyPrefix string `mapstructure:"key_prefix"`

	// Endpoint overrides the S3 endpoint (for MinIO, Localstack, etc.)
	Endpoint string `mapstructure:"endpoint"`

	// AccessKeyID and SecretAccessKey select static credentials; when
	// empty the default credential chain is used
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// MaxRetries is the retry attempt count for transient S3 failures
	MaxRetries int `mapstructure:"max_retries"`
}

// S3Mirror copies exports into an S3 or S3-compatible bucket. Object keys
// mirror the path layout below the case root, so the bucket contents stay
// human-readable and a case can be reconstructed from the bucket alone.
type S3Mirror struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// NewS3Mirror creates an S3 mirror from configuration.
//
// This builds the AWS client and verifies bucket access. The bucket must
// already exist; this function does not create it.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - cfg: S3 mirror configuration
//
// Returns:
//   - *S3Mirror: Initialized S3 mirror
//   - error: Configuration error or failed bucket access
func NewS3Mirror(ctx context.Context, cfg S3MirrorConfig) (*S3Mirror, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 mirror: bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 mirror: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(cfg.Region))

	if cfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for compatibility with MinIO/Localstack
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	logger.Info("S3 mirror initialized: bucket=%s, region=%s, prefix=%s",
		cfg.Bucket, cfg.Region, cfg.KeyPrefix)

	return &S3Mirror{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// Put uploads the content under keyPrefix/relativePath.
//
// The content is buffered in memory before upload; exported objects are
// small enough that multipart upload is not worth the complexity here.
func (m *S3Mirror) Put(ctx context.Context, relativePath string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("buffering mirror content: %w", err)
	}

	key := path.Join(m.keyPrefix, relativePath)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}
