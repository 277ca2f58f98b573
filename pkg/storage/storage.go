package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("not found")

// Storage is a flat key-value store addressed by slash-separated paths.
// Sessions, store snapshots, push subscriptions and exported files all live here.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

type Options struct {
	Type     string
	BaseDir  string
	S3Bucket string
	S3Prefix string
	S3Region string
}

// Open builds the Storage selected by opts.Type. Unknown types fall back to local.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Type {
	case TypeS3:
		if opts.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket")
		}
		return NewS3Storage(ctx, opts.S3Bucket, opts.S3Prefix, opts.S3Region)
	default:
		return NewLocalStorage(opts.BaseDir)
	}
}
