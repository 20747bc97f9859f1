// Package storage abstracts the object store holding product and category
// images. Two drivers exist: "local" (a directory served under /storage) and
// "s3" (AWS S3 or any S3-compatible service such as MinIO or R2).
//
//	disks, _ := storage.FromConfig(ctx)
//	url := disks.Default().URL("products/7/front.jpg")
package storage

import (
	"context"
	"errors"
)

// ErrInvalidPath is returned for keys that escape the disk root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, creating parents as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the full content of path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes paths. Missing paths are not an error.
	Delete(ctx context.Context, paths ...string) error

	// URL returns the public URL of path.
	URL(path string) string
}
