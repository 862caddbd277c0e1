package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// BlobStorage defines the interface for storing and retrieving generated artifacts.
// Paths are relative keys; each backend maps them onto its own root (an output
// directory on disk, or a key prefix in a bucket).
type BlobStorage interface {
	// Upload stores data from the reader at the specified path, replacing any existing data.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download retrieves data from the specified path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the data at the specified path.
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns a location for the data at the specified path.
	// For local storage this is the file path; for S3 a presigned URL.
	GetURL(ctx context.Context, path string) (string, error)
}

// Config selects and configures a BlobStorage backend.
type Config struct {
	Type          string // "local" or "s3"
	BaseDir       string
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	PresignExpiry time.Duration
}

// NewBlobStorage creates a BlobStorage implementation based on configuration.
func NewBlobStorage(ctx context.Context, cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "local":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("base_dir is required for local storage")
		}
		return NewLocalStorage(cfg.BaseDir)

	case "s3":
		s3Storage, err := NewS3Storage(ctx, S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Prefix:        cfg.S3Prefix,
			PresignExpiry: cfg.PresignExpiry,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return s3Storage, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %q", cfg.Type)
	}
}

func trimPrefix(prefix string) string {
	return strings.Trim(prefix, "/")
}
