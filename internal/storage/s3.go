package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures the object-storage client. Endpoint points at any
// S3-compatible backend; PublicBaseURL is the CDN or public host objects are
// served from (falls back to path-style endpoint URLs when empty).
type S3Options struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	// BucketPrefix namespaces bucket names per environment (dev-, test-).
	BucketPrefix string
}

// S3Store implements Uploader against an S3-compatible backend.
type S3Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	opts     S3Options
	endpoint string
}

// NewS3Store builds the client. Path-style addressing is forced because
// S3-compatible backends rarely support virtual-hosted buckets.
func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Endpoint == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete storage config: endpoint and credentials are required")
	}
	endpoint := strings.TrimSuffix(opts.Endpoint, "/")
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
	})

	return &S3Store{
		client:   client,
		presign:  s3.NewPresignClient(client),
		opts:     opts,
		endpoint: endpoint,
	}, nil
}

func (s *S3Store) bucketName(b Bucket) string {
	return s.opts.BucketPrefix + string(b)
}

// Upload validates the file locally, then stores it under a generated key
// and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, in UploadInput) (string, error) {
	if err := ValidateUpload(in); err != nil {
		return "", err
	}

	key := in.Key
	if key == "" {
		key = ObjectKey(in.OwnerID, in.Filename)
	}
	contentType := detectContentType(in.Filename, in.Data, in.ContentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName(in.Bucket)),
		Key:         aws.String(key),
		Body:        bytes.NewReader(in.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %s/%s: %w", in.Bucket, key, err)
	}

	return s.publicURL(in.Bucket, key), nil
}

// Delete removes an object. A missing key is not an error; S3 delete is
// idempotent.
func (s *S3Store) Delete(ctx context.Context, bucket Bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName(bucket)),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PresignDownload returns a 15-minute download URL for a private object.
func (s *S3Store) PresignDownload(ctx context.Context, bucket Bucket, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName(bucket)),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

func (s *S3Store) publicURL(bucket Bucket, key string) string {
	if base := strings.TrimSuffix(s.opts.PublicBaseURL, "/"); base != "" {
		return fmt.Sprintf("%s/%s/%s", base, s.bucketName(bucket), key)
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName(bucket), key)
}
