// Package blobstore is a small get/put-by-key facade over S3-compatible object
// stores (Dell ECS for install base data, AWS S3 for published insights).
package blobstore

import (
	"context"
	"fmt"
)

// Getter fetches an object body by key.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Putter stores an object body under key and returns its ETag.
type Putter interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Store is both.
type Store interface {
	Getter
	Putter
}

// NotFoundError reports a key that does not exist in the bucket.
type NotFoundError struct {
	Bucket string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object %s/%s not found", e.Bucket, e.Key)
}

// TransportError is any other store failure.
type TransportError struct {
	Op     string // get | put
	Bucket string
	Key    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
