package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/erhmprah/ebook/internal/config"
)

// R2Store pushes blobs to a Cloudflare R2 bucket through the S3 API.
// Locators are fully-qualified public URLs under the configured custom
// domain, scoped to a logical folder inside the bucket.
type R2Store struct {
	client    *s3.Client
	bucket    string
	folder    string
	publicURL string
}

// NewR2Store builds the S3 client against the account's R2 endpoint.
func NewR2Store(cfg *appconfig.Config, folder string) (*R2Store, error) {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(r2Resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}

	publicURL := cfg.R2PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.r2.dev", cfg.R2BucketName)
	}

	return &R2Store{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.R2BucketName,
		folder:    strings.Trim(folder, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// objectKey maps a locator back to the bucket key. Accepts both a full
// public URL (what Put returns) and a bare key.
func (s *R2Store) objectKey(locator string) string {
	key := strings.TrimPrefix(locator, s.publicURL)
	key = strings.TrimLeft(key, "/")
	if !strings.HasPrefix(key, s.folder+"/") {
		key = s.folder + "/" + key
	}
	return key
}

func (s *R2Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	fullKey := s.folder + "/" + key
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(fullKey),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return joinURL(s.publicURL, fullKey), nil
}

func (s *R2Store) Get(ctx context.Context, locator string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(locator)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, out.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Delete is idempotent: S3 DeleteObject succeeds for missing keys.
func (s *R2Store) Delete(ctx context.Context, locator string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(locator)),
	})
	return err
}

// ResolveURL is the identity for R2 locators, which are already absolute.
func (s *R2Store) ResolveURL(locator string) string {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return locator
	}
	return joinURL(s.publicURL, s.folder+"/"+locator)
}
