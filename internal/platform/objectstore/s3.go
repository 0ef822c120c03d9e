// Package objectstore stores submission assets in an S3 compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/pkg/config"
)

// ErrDisabled is returned by every call when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

var Module = fx.Options(
	fx.Provide(NewS3Store),
)

type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

func NewS3Store(cfg *config.Config, log *zap.SugaredLogger) (*S3Store, error) {
	sc := cfg.Storage
	if sc.Bucket == "" {
		log.Warnw("object_storage_disabled", "detail", "storage.bucket is empty")
		return &S3Store{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(sc.Region)}
	if sc.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.AccessKeyID, sc.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
			// MinIO, R2 and B2 want path-style addressing.
			o.UsePathStyle = true
		}
	})
	log.Infow("object_storage_ready", "bucket", sc.Bucket, "endpoint", sc.Endpoint)
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  sc.Bucket,
		ttl:     sc.PresignTTL,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error {
	if s.client == nil {
		return ErrDisabled
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// PresignGet returns a time-limited download URL that saves the object as filename.
func (s *S3Store) PresignGet(ctx context.Context, key, filename string) (string, time.Time, error) {
	if s.client == nil {
		return "", time.Time{}, ErrDisabled
	}
	ttl := s.ttl
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": filename})),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign s3://%s/%s: %w", s.bucket, key, err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return ErrDisabled
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
