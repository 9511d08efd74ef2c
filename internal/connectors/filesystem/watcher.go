package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Watch emits page changes under the given paths until ctx is cancelled.
// New subdirectories are watched as they appear.
func (l *Loader) Watch(ctx context.Context, paths ...string) (<-chan domain.RawDocumentChange, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, p := range paths {
		if err := addRecursive(watcher, ResolvePath(p)); err != nil {
			watcher.Close()
			return nil, nil, err
		}
	}

	changes := make(chan domain.RawDocumentChange)
	errs := make(chan error, 1)

	go func() {
		defer close(changes)
		defer close(errs)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, ok := l.toChange(watcher, event)
				if !ok {
					continue
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
					logger.Warn("watcher error dropped: %v", err)
				}
			}
		}
	}()

	return changes, errs, nil
}

func (l *Loader) toChange(watcher *fsnotify.Watcher, event fsnotify.Event) (domain.RawDocumentChange, bool) {
	path := event.Name

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if !Supported(path) {
			return domain.RawDocumentChange{}, false
		}
		return domain.RawDocumentChange{
			Type:     domain.ChangeDeleted,
			Document: domain.RawDocument{URI: path, MIMEType: mimeType(path)},
		}, true
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return domain.RawDocumentChange{}, false
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := addRecursive(watcher, path); err != nil {
				logger.Warn("watch %s: %v", path, err)
			}
		}
		return domain.RawDocumentChange{}, false
	}
	if isHidden(filepath.Base(path)) || !Supported(path) {
		return domain.RawDocumentChange{}, false
	}

	doc, err := l.read(path)
	if err != nil {
		logger.Warn("skipping %s: %v", path, err)
		return domain.RawDocumentChange{}, false
	}

	changeType := domain.ChangeUpdated
	if event.Has(fsnotify.Create) {
		changeType = domain.ChangeCreated
	}
	return domain.RawDocumentChange{Type: changeType, Document: *doc}, true
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
