package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3BlobStore stores blobs in a single S3 bucket under KeyPrefix. It
// satisfies the same BlobStore contract as LocalBlobStore so the Upload
// Engine and Variant Generator are indifferent to which backs them; the
// only behavioral difference is PathOnFS, which S3 objects never have.
type S3BlobStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string
	UsePathStyle    bool
}

func NewS3BlobStore(ctx context.Context, cfg S3Config) (*S3BlobStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3BlobStore{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
	}, nil
}

func (s *S3BlobStore) key(path string) string {
	path = strings.TrimPrefix(path, "/")
	if s.keyPrefix == "" {
		return path
	}
	return s.keyPrefix + "/" + path
}

func (s *S3BlobStore) Put(path string, r io.Reader) error {
	// S3 PutObject needs a seekable/length-known body for content-length;
	// buffer in memory since chunk and variant payloads are bounded well
	// below what the process can hold.
	buf, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("buffering blob for upload: %w", err)
	}

	_, err = s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
		Body:   bytes.NewReader(buf),
	})
	if err != nil {
		return fmt.Errorf("putting object: %w", err)
	}
	return nil
}

func (s *S3BlobStore) Get(path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("getting object: %w", err)
	}
	return out.Body, nil
}

func (s *S3BlobStore) Exists(path string) bool {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	return err == nil
}

func (s *S3BlobStore) Delete(path string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// PathOnFS never applies to S3-backed blobs; callers must fall back to
// Get instead of touching a local filesystem path.
func (s *S3BlobStore) PathOnFS(path string) (string, bool) {
	return "", false
}

func (s *S3BlobStore) DeletePrefix(prefix string) error {
	ctx := context.Background()
	fullPrefix := s.key(prefix)

	var continuationToken *string
	for {
		listOut, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(fullPrefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return fmt.Errorf("listing objects under prefix: %w", err)
		}

		for _, obj := range listOut.Contents {
			if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				return fmt.Errorf("deleting object %s: %w", aws.ToString(obj.Key), err)
			}
		}

		if listOut.IsTruncated == nil || !*listOut.IsTruncated {
			break
		}
		continuationToken = listOut.NextContinuationToken
	}
	return nil
}
