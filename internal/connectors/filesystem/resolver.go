package filesystem

import (
	"path/filepath"
	"strings"
)

// ResolvePath converts a file:// URI or relative path to an absolute local path.
func ResolvePath(uri string) string {
	path := strings.TrimPrefix(uri, "file://")
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
