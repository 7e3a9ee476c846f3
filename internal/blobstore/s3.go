package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of *s3.Client used here.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store reads and writes objects in a single bucket.
type S3Store struct {
	client  S3API
	bucket  string
	timeout time.Duration
}

// NewS3Store returns a store bound to bucket. A zero timeout leaves store
// calls unbounded.
func NewS3Store(client S3API, bucket string, timeout time.Duration) *S3Store {
	return &S3Store{client: client, bucket: bucket, timeout: timeout}
}

// Bucket returns the bucket name.
func (s *S3Store) Bucket() string { return s.bucket }

func (s *S3Store) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Get returns the full object body.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Bucket: s.bucket, Key: key}
		}
		return nil, &TransportError{Op: "get", Bucket: s.bucket, Key: key, Err: err}
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &TransportError{Op: "get", Bucket: s.bucket, Key: key, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// Put writes body under key and returns the unquoted ETag.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", &TransportError{Op: "put", Bucket: s.bucket, Key: key, Err: err}
	}
	return strings.Trim(aws.ToString(out.ETag), `"`), nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	// ECS and other S3-compatible endpoints do not always map to the typed errors.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
