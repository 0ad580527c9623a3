// Package storage keeps photo objects in buckets and hands out expiring
// signed URLs for them.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidKey   = errors.New("invalid object key")
	ErrInvalidToken = errors.New("invalid signed url token")
	ErrExpired      = errors.New("signed url expired")
	ErrNotFound     = errors.New("object not found")
)

// ObjectStore is the object storage contract the services depend on.
type ObjectStore interface {
	// Put writes body under bucket/key and returns the bytes written.
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) (int64, error)
	// Delete removes bucket/key. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, key string) error
	// SignedURL returns a URL granting read access to bucket/key until ttl
	// elapses.
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
