// Package storage abstracts the S3-compatible artifact store. Model
// artifacts, pipeline definitions, drift baselines, data capture output and
// monitoring results all live behind this interface. Implementations stream
// every object; nothing touches local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Get when no object exists under the key.
// Monitoring treats it as a clean run (no violations document was written).
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions carries optional upload parameters. Size is the exact
// byte count when known; -1 lets the backend chunk the stream itself.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the artifact-store client used by the services.
type Storage interface {
	// Put uploads an object under key from the reader.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams an object's content alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL usable without
	// credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
