package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Options struct {
	Region    string
	Bucket    string
	Endpoint  string // custom endpoint for minio and friends, switches to path style
	PublicURL string
}

// S3CoverStorage uploads covers to an S3 compatible bucket.
type S3CoverStorage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3CoverStorage(ctx context.Context, opts S3Options) (*S3CoverStorage, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := opts.PublicURL
	switch {
	case publicURL != "":
	case opts.Endpoint != "":
		publicURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	default:
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return &S3CoverStorage{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *S3CoverStorage) StoreAs(ctx context.Context, prefix, filename string, body io.Reader, contentType string) (string, error) {
	key := path.Join(prefix, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return key, nil
}

func (s *S3CoverStorage) URL(p string) string {
	return s.publicURL + "/" + strings.TrimLeft(p, "/")
}
