package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/benchgrade/benchgrade/internal/observability"
)

var contentTypes = map[string]string{
	".json": "application/json",
	".csv":  "text/csv; charset=utf-8",
}

// ContentType returns the content type uploaded for a file name.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Publisher uploads artifact files to a Store under Prefix. With Verify set,
// each object is read back after upload and compared with the local file.
type Publisher struct {
	Store   Store
	Prefix  string
	Verify  bool
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Close releases the store's client when it holds one.
func (p *Publisher) Close() error {
	if c, ok := p.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Key returns the object name a local file is published under.
func (p *Publisher) Key(file string) string {
	base := filepath.Base(file)
	if p.Prefix == "" {
		return base
	}
	return path.Join(strings.Trim(p.Prefix, "/"), base)
}

// Publish uploads each file and returns the object names written, in order.
// It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, files []string) ([]string, error) {
	logger := p.Logger
	if logger == nil {
		logger = observability.Discard()
	}

	keys := make([]string, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return keys, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return keys, fmt.Errorf("read artifact: %w", err)
		}
		key := p.Key(file)
		if err := p.Store.Put(ctx, key, data, ContentType(file)); err != nil {
			return keys, fmt.Errorf("publish %s: %w", file, err)
		}
		if p.Verify {
			stored, err := p.Store.Get(ctx, key)
			if err != nil {
				return keys, fmt.Errorf("verify %s: %w", key, err)
			}
			if !bytes.Equal(stored, data) {
				return keys, fmt.Errorf("verify %s: stored object differs from %s", key, file)
			}
		}
		if p.Metrics != nil {
			p.Metrics.ArtifactsPublished.WithLabelValues(p.Store.Backend()).Inc()
		}
		logger.Info("artifact published", "backend", p.Store.Backend(), "key", key, "bytes", len(data))
		keys = append(keys, key)
	}
	return keys, nil
}

// Artifacts lists the JSON and CSV files directly inside dir, sorted by name.
func Artifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := contentTypes[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
