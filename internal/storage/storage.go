// Package storage keeps uploaded media blobs. The media records in the database
// only hold the object name; the bytes live behind a Provider.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/huangang/framewise/backend/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

type Provider interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	// Get opens the blob. The caller closes the reader.
	Get(ctx context.Context, name string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, name string) error
	Name() string
}

// New builds the provider selected by cfg.Driver. uploadDir is used by the local driver.
func New(ctx context.Context, cfg config.StorageConfig, uploadDir string) (Provider, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(uploadDir)
	case "s3":
		return newS3(ctx, cfg)
	case "minio":
		return newMinio(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// objectKey rejects names that would escape the bucket prefix or upload dir.
func objectKey(basePath, name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	if basePath == "" {
		return name, nil
	}
	return path.Join(strings.Trim(basePath, "/"), name), nil
}
