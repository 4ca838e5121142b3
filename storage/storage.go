package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage stores the raw bytes of dispute documents. Paths are opaque
// to callers and recorded on the document row.
type Storage interface {
	// Upload stores a document's bytes under the dispute and returns
	// the storage path
	Upload(ctx context.Context, disputeID uuid.UUID, fileName string, data io.Reader) (string, error)

	// Download opens a stored document by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a stored document by storage path
	Delete(ctx context.Context, storagePath string) error
}

// BackendType selects the storage backend
type BackendType string

const (
	BackendLocal BackendType = "local"
	BackendS3    BackendType = "s3"
)

// Config holds storage backend configuration
type Config struct {
	Type         BackendType
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// New creates a storage backend from configuration
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case BackendLocal:
		return NewLocalStorage(cfg.LocalPath)
	case BackendS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewFromEnv creates a storage backend from environment variables.
// Local storage is the default so development works without AWS
// credentials.
func NewFromEnv() (Storage, error) {
	backend := os.Getenv("STORAGE_TYPE")
	if backend == "" {
		backend = string(BackendLocal)
	}

	switch BackendType(backend) {
	case BackendLocal:
		localPath := os.Getenv("STORAGE_LOCAL_PATH")
		if localPath == "" {
			localPath = "./data/documents"
		}
		return NewLocalStorage(localPath)

	case BackendS3:
		cfg := Config{
			Type:         BackendS3,
			S3Bucket:     os.Getenv("AWS_S3_BUCKET"),
			S3Region:     os.Getenv("AWS_REGION"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for S3 storage")
		}
		return NewS3Storage(cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", backend)
	}
}

// documentPath builds the storage path for an uploaded document:
// disputes/<dispute-id>/<random>_<sanitized-name>. The random segment
// keeps same-named uploads from colliding.
func documentPath(disputeID uuid.UUID, fileName string) string {
	base := filepath.Base(fileName)
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, base)

	return fmt.Sprintf("disputes/%s/%s_%s", disputeID, uuid.NewString()[:8], base)
}

// contentType guesses a MIME type from the file extension
func contentType(fileName string) string {
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
