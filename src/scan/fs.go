package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	bberrors "github.com/sofmeright/bandbox/src/errors"
	"github.com/sofmeright/bandbox/src/logging"
)

// FS walks a directory on disk. The root itself is the first entry and empty
// directories are included; nothing is excluded.
type FS struct {
	Root string
}

// Walk implements Source.
func (s FS) Walk(ctx context.Context, fn func(Entry) error) error {
	logger := logging.GetLogger("scan.fs")

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return bberrors.Wrapf(err, bberrors.ErrPath, "resolving scan root %q", s.Root)
	}
	info, err := os.Stat(root)
	if err != nil {
		return bberrors.Wrapf(err, bberrors.ErrPath, "invalid path %q", s.Root)
	}
	if !info.IsDir() {
		return bberrors.Newf(bberrors.ErrPath, "scan root %q is not a directory", s.Root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return bberrors.Wrapf(err, bberrors.ErrPath, "reading scan root %q", s.Root)
			}
			// Unreadable subtree: report what we have and keep going.
			logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(Entry{Path: normalizeSlashPath(path), IsDir: d.IsDir()})
	})
}
