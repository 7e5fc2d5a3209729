package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotConfigured is returned when no object storage bucket is set up.
var ErrNotConfigured = errors.New("storage service not configured")

// Object describes an uploaded object.
type Object struct {
	Bucket string
	Key    string
	Size   int64
}

// Service archives documents to remote object storage and hands out
// time-limited download links for them.
type Service interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) (*Object, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
