// Package filesystem loads documentation pages from local files and
// watches them for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// mimeTypes maps supported page extensions to MIME types.
var mimeTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".mdx":      "text/markdown",
	".txt":      "text/plain",
}

// Loader reads markdown and text pages from disk.
type Loader struct {
	maxSize int64
}

// Option configures the loader.
type Option func(*Loader)

// WithMaxSize skips files larger than size bytes.
func WithMaxSize(size int64) Option {
	return func(l *Loader) {
		if size > 0 {
			l.maxSize = size
		}
	}
}

// DefaultMaxSize is the largest page the loader reads.
const DefaultMaxSize = 10 << 20

// New creates a filesystem loader.
func New(opts ...Option) *Loader {
	l := &Loader{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Supported reports whether the path has a page extension the loader reads.
func Supported(path string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load returns every supported page under the given files or directories.
// Hidden files and directories are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]domain.RawDocument, error) {
	var docs []domain.RawDocument

	for _, p := range paths {
		root := ResolvePath(p)
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			doc, err := l.read(root)
			if err != nil {
				return nil, err
			}
			docs = append(docs, *doc)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if path != root && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !Supported(path) {
				return nil
			}

			doc, err := l.read(path)
			if errors.Is(err, errTooLarge) {
				return nil
			}
			if err != nil {
				return err
			}
			docs = append(docs, *doc)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	return docs, nil
}

var errTooLarge = errors.New("file too large")

func (l *Loader) read(path string) (*domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > l.maxSize {
		return nil, fmt.Errorf("%s: %w", path, errTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &domain.RawDocument{
		URI:      path,
		MIMEType: mimeType(path),
		Content:  content,
		Metadata: map[string]any{
			"source":   path,
			"size":     info.Size(),
			"modified": info.ModTime().UTC().Format(time.RFC3339),
		},
	}, nil
}

func mimeType(path string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "text/plain"
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
