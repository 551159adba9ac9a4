// Package storage is the filesystem abstraction behind image uploads and
// CSV imports.
//
// Two drivers are available:
//   - "local": a directory on this host (default); served under /images
//   - "s3"   : S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	disks := storage.Connect(ctx)
//	disk, _ := disks.Default()
//	_ = disk.Put(ctx, "images/product_1700000000000.png", file)
//	url := disk.URL("images/product_1700000000000.png")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for a missing path.
var ErrNotFound = errors.New("storage: file not found")

// Disk is the driver interface.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader) error

	// Get opens path for reading. Caller must close it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path. A result starting with "/" is
	// relative to the API host.
	URL(path string) string
}
