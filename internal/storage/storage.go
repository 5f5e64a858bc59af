package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"ocrweb/internal/model"
)

// Package storage persists uploaded files. The primary store is the local
// filesystem under the media root because the OCR engine reads from a path.
// An optional S3-compatible archive receives a copy of each upload.

// ErrNameExhausted is returned when no free name could be found for an upload.
var ErrNameExhausted = errors.New("no free file name")

// Storage saves uploads under a writable root directory.
type Storage interface {
	// Save writes r under a name derived from name. It never overwrites an
	// existing file; colliding names get a random suffix.
	Save(ctx context.Context, name string, r io.Reader, contentType string) (model.StoredFile, error)
	// Delete removes a stored file by its name relative to the root. Missing files are ignored.
	Delete(ctx context.Context, name string) error
	// Sweep removes regular files last modified before cutoff and returns their names.
	Sweep(ctx context.Context, cutoff time.Time) ([]string, error)
}

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an archived object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Archive is an S3-compatible object store that keeps copies of uploads.
type Archive interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
}
