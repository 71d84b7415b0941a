// Package s3store keeps avatars in an S3 compatible bucket (AWS S3, MinIO)
// under a fixed key prefix.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/patric-chuzhbe/contactsapi/internal/filestore"
)

const keyPrefix = "avatars"

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Store struct {
	client objectAPI
	bucket string
}

// Options describe how to reach the bucket. Empty AccessKey falls back to
// the default AWS credential chain; a non empty Endpoint switches to path
// style addressing for MinIO and friends.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func New(ctx context.Context, opts Options) (*S3Store, error) {
	loadOptions := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("in internal/filestore/s3store/s3store.go/New(): error while `config.LoadDefaultConfig()` calling: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newWithClient(client, opts.Bucket), nil
}

func newWithClient(client objectAPI, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
	}
}

func objectKey(name string) string {
	return path.Join(keyPrefix, name)
}

// Save uploads content as avatars/<name>. The SDK has to rewind the body
// to sign and checksum it over plain HTTP, so a reader that cannot seek is
// buffered first.
func (s *S3Store) Save(ctx context.Context, name string, content io.Reader, contentType string) error {
	if !filestore.ValidName(name) {
		return filestore.ErrInvalidName
	}

	body, ok := content.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(content)
		if err != nil {
			return fmt.Errorf("in internal/filestore/s3store/s3store.go/Save(): error while `io.ReadAll()` calling: %w", err)
		}
		body = bytes.NewReader(data)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(name)),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("in internal/filestore/s3store/s3store.go/Save(): error while `s.client.PutObject()` calling: %w", err)
	}

	return nil
}

// Open streams avatars/<name>. A missing key yields filestore.ErrNotExist.
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !filestore.ValidName(name) {
		return nil, filestore.ErrNotExist
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, filestore.ErrNotExist
		}
		return nil, fmt.Errorf("in internal/filestore/s3store/s3store.go/Open(): error while `s.client.GetObject()` calling: %w", err)
	}

	return output.Body, nil
}
