// Package scan produces the depth-first pre-order entry streams the tree is
// built from.
package scan

import (
	"context"
	"path/filepath"
	"strings"
)

// Entry is one filesystem entry: an absolute, slash-separated path and
// whether it names a directory.
type Entry struct {
	Path  string
	IsDir bool
}

// Source yields entries in depth-first pre-order. Walk stops at the first
// error returned by fn and returns it.
type Source interface {
	Walk(ctx context.Context, fn func(Entry) error) error
}

// normalizeSlashPath converts a path to forward slashes.
func normalizeSlashPath(p string) string {
	return filepath.ToSlash(p)
}

// joinSlash joins base and rel, keeping forward slashes.
func joinSlash(base, rel string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/" + strings.TrimLeft(rel, "/")
	}
	return base + "/" + strings.TrimLeft(rel, "/")
}
