package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"

	bberrors "github.com/sofmeright/bandbox/src/errors"
)

// Git lists the files tracked in the index of the repository containing
// Root, restricted to Root's subtree. Directories are synthesised from the
// file paths, so untracked and empty directories never appear.
type Git struct {
	Root string
}

// Walk implements Source.
func (s Git) Walk(ctx context.Context, fn func(Entry) error) error {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return bberrors.Wrapf(err, bberrors.ErrPath, "resolving scan root %q", s.Root)
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return bberrors.Wrapf(err, bberrors.ErrPath, "opening git repository at %q", s.Root)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return bberrors.Wrapf(err, bberrors.ErrPath, "opening worktree for %q", s.Root)
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("reading git index: %w", err)
	}

	repoRoot := normalizeSlashPath(wt.Filesystem.Root())
	scanRoot := normalizeSlashPath(root)

	names := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		names = append(names, joinSlash(repoRoot, e.Name))
	}
	sort.Strings(names)

	return walkTracked(ctx, scanRoot, names, fn)
}

// walkTracked emits scanRoot, then every tracked file below it preceded by
// any ancestor directory not yet emitted. files must be sorted.
func walkTracked(ctx context.Context, scanRoot string, files []string, fn func(Entry) error) error {
	scanRoot = strings.TrimRight(scanRoot, "/")
	if err := fn(Entry{Path: scanRoot, IsDir: true}); err != nil {
		return err
	}

	emitted := map[string]bool{scanRoot: true}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, ok := strings.CutPrefix(f, scanRoot+"/")
		if !ok {
			continue
		}
		parts := strings.Split(rel, "/")
		dir := scanRoot
		for _, p := range parts[:len(parts)-1] {
			dir = dir + "/" + p
			if emitted[dir] {
				continue
			}
			emitted[dir] = true
			if err := fn(Entry{Path: dir, IsDir: true}); err != nil {
				return err
			}
		}
		if err := fn(Entry{Path: f}); err != nil {
			return err
		}
	}
	return nil
}
