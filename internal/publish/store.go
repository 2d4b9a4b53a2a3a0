// Package publish uploads run artifacts to blob storage so the site build can
// fetch them.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benchgrade/benchgrade/pkg/config"
)

// Store abstracts blob storage for published artifacts.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Get(ctx context.Context, name string) ([]byte, error)
	Backend() string
}

// LocalStore implements Store using the local filesystem.
// Useful for development and testing.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{BaseDir: baseDir}
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.BaseDir, filepath.FromSlash(name))
}

// Put writes data under name. The content type is not stored.
func (s *LocalStore) Put(_ context.Context, name string, data []byte, _ string) error {
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get reads the blob stored under name.
func (s *LocalStore) Get(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(s.path(name))
}

func (s *LocalStore) Backend() string { return "local" }

// NewStore builds the Store selected by cfg.
func NewStore(ctx context.Context, cfg config.PublishConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("local publish backend requires local_dir")
		}
		return NewLocalStore(cfg.LocalDir), nil
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: os.Getenv("BENCHGRADE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("BENCHGRADE_S3_SECRET_KEY"),
		})
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown publish backend %q", cfg.Backend)
	}
}
