// Package storage defines the object store contract used by the export
// pipeline.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned for keys that have no object behind them.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is what the exporter needs from a bucket: write an object and
// read it back. Deleting and listing stay with the bucket owner's tooling.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}

type PutOptions struct {
	ContentType string
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}
