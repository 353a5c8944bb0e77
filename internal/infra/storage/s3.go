package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// S3 stores public objects. Works against AWS or any S3-compatible
// endpoint (path-style addressing when Endpoint is set).
type S3 struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3(opt Options) *S3 {
	client := s3.New(s3.Options{
		Region:      opt.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opt.AccessKey, opt.SecretKey, ""),
	}, func(o *s3.Options) {
		if opt.Endpoint != "" {
			o.BaseEndpoint = aws.String(opt.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{
		client:    client,
		bucket:    opt.Bucket,
		publicURL: publicBase(opt),
	}
}

func (s *S3) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=86400"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *S3) URL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

func publicBase(opt Options) string {
	if opt.PublicURL != "" {
		return strings.TrimRight(opt.PublicURL, "/")
	}
	if opt.Endpoint != "" {
		return strings.TrimRight(opt.Endpoint, "/") + "/" + opt.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opt.Bucket, opt.Region)
}
