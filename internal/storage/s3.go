package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/hyperjump/resumatch/internal/config"
	"github.com/hyperjump/resumatch/internal/models"
)

// ObjectAPI is the part of the S3 client used to fetch resumes.
type ObjectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from cfg. Static credentials are used when an access key is
// set; a custom endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Source downloads resumes stored under a bucket prefix.
type S3Source struct {
	client   ObjectAPI
	bucket   string
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

// S3Option configures an S3Source.
type S3Option func(*S3Source)

// WithS3Logger sets the logger for downloads.
func WithS3Logger(logger *zap.Logger) S3Option {
	return func(s *S3Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetry sets how many times a download is attempted and the base wait between attempts.
func WithRetry(attempts int, backoff time.Duration) S3Option {
	return func(s *S3Source) {
		if attempts > 0 {
			s.attempts = attempts
		}
		s.backoff = backoff
	}
}

// NewS3Source returns a source reading from bucket.
func NewS3Source(client ObjectAPI, bucket string, opts ...S3Option) *S3Source {
	s := &S3Source{
		client:   client,
		bucket:   bucket,
		attempts: 3,
		backoff:  500 * time.Millisecond,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Object is a listed key and its size in bytes.
type Object struct {
	Key  string
	Size int64
}

// List returns every object under prefix.
func (s *S3Source) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	in := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket), Prefix: aws.String(prefix)}
	for {
		out, err := s.client.ListObjectsV2(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range out.Contents {
			if key := aws.ToString(obj.Key); key != "" {
				objects = append(objects, Object{Key: key, Size: aws.ToInt64(obj.Size)})
			}
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			return objects, nil
		}
		in.ContinuationToken = out.NextContinuationToken
	}
}

// Download returns the object body, retrying transient failures.
// With limit > 0 at most limit+1 bytes are read, so callers can detect an oversized body
// without buffering all of it.
func (s *S3Source) Download(ctx context.Context, key string, limit int64) ([]byte, error) {
	return retry(ctx, s.attempts, s.backoff, func() ([]byte, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get object: %w", err)
		}
		defer out.Body.Close()
		var body io.Reader = out.Body
		if limit > 0 {
			body = io.LimitReader(out.Body, limit+1)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read object body: %w", err)
		}
		return data, nil
	})
}

// Fetch stages every object under prefix that staging accepts and returns the local paths.
// Objects listed above the staging size limit are skipped without being downloaded.
// Objects that fail to download or stage are reported as skips; only a listing failure is an error.
func (s *S3Source) Fetch(ctx context.Context, prefix string, staging *Staging) ([]string, []models.ExtractionSkip, error) {
	objects, err := s.List(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}
	var paths []string
	var skipped []models.ExtractionSkip
	for _, obj := range objects {
		if !staging.Accepts(obj.Key) {
			continue
		}
		err := staging.Check(obj.Key, obj.Size)
		var data []byte
		if err == nil {
			data, err = s.Download(ctx, obj.Key, staging.MaxBytes())
		}
		if err == nil {
			err = staging.Check(obj.Key, int64(len(data)))
		}
		var p string
		if err == nil {
			p, err = staging.Save(path.Base(obj.Key), bytes.NewReader(data))
		}
		if err != nil {
			s.logger.Warn("skipping s3 object", zap.String("key", obj.Key), zap.Error(err))
			skipped = append(skipped, models.ExtractionSkip{Path: "s3://" + s.bucket + "/" + obj.Key, Reason: err.Error()})
			continue
		}
		paths = append(paths, p)
	}
	s.logger.Info("fetched resumes from s3",
		zap.String("bucket", s.bucket),
		zap.String("prefix", prefix),
		zap.Int("staged", len(paths)),
		zap.Int("skipped", len(skipped)))
	return paths, skipped, nil
}

// retry calls fn up to attempts times, waiting backoff*(i+1) between tries.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
