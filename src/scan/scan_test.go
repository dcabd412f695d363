package scan

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bberrors "github.com/sofmeright/bandbox/src/errors"
)

func collect(t *testing.T, src Source) []Entry {
	t.Helper()
	var out []Entry
	require.NoError(t, src.Walk(context.Background(), func(e Entry) error {
		out = append(out, e)
		return nil
	}))
	return out
}

func TestFSWalkPreOrder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "x.tif"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), nil, 0o644))

	entries := collect(t, FS{Root: root})
	base := filepath.ToSlash(root)

	assert.Equal(t, []Entry{
		{Path: base, IsDir: true},
		{Path: base + "/a", IsDir: true},
		{Path: base + "/a/empty", IsDir: true},
		{Path: base + "/a/x.tif"},
		{Path: base + "/b.txt"},
	}, entries)
}

func TestFSMissingRoot(t *testing.T) {
	err := FS{Root: filepath.Join(t.TempDir(), "nope")}.Walk(context.Background(), func(Entry) error { return nil })
	require.Error(t, err)
	assert.True(t, bberrors.IsErrorCode(err, bberrors.ErrPath))
}

func TestFSRootIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	err := FS{Root: f}.Walk(context.Background(), func(Entry) error { return nil })
	assert.True(t, bberrors.IsErrorCode(err, bberrors.ErrPath))
}

func TestFSCancelled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "x"), nil, 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := FS{Root: root}.Walk(ctx, func(Entry) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListSources(t *testing.T) {
	tests := []struct {
		name  string
		input string
		base  string
		want  []Entry
	}{
		{
			name:  "newline separated",
			input: "/d/\n/d/x.tif\n\n/d/sub/\n",
			want: []Entry{
				{Path: "/d", IsDir: true},
				{Path: "/d/x.tif"},
				{Path: "/d/sub", IsDir: true},
			},
		},
		{
			name:  "comma separated",
			input: "/d/, /d/x.tif, /d/y.tif",
			want: []Entry{
				{Path: "/d", IsDir: true},
				{Path: "/d/x.tif"},
				{Path: "/d/y.tif"},
			},
		},
		{
			name:  "relative joined to base",
			input: "data/\ndata/a.mrc\n# comment\n",
			base:  "/srv",
			want: []Entry{
				{Path: "/srv/data", IsDir: true},
				{Path: "/srv/data/a.mrc"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, List{Reader: strings.NewReader(tt.input), Base: tt.base})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListRejectsBareSeparator(t *testing.T) {
	err := List{Reader: strings.NewReader("/\n")}.Walk(context.Background(), func(Entry) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestWalkTrackedSynthesisesDirectories(t *testing.T) {
	files := []string{
		"/repo/data/a/x.tif",
		"/repo/data/a/y.tif",
		"/repo/data/b/c/z.mrc",
		"/repo/other/skip.txt",
		"/repo/data/top.txt",
	}
	var got []Entry
	err := walkTracked(context.Background(), "/repo/data", sorted(files), func(e Entry) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Path: "/repo/data", IsDir: true},
		{Path: "/repo/data/a", IsDir: true},
		{Path: "/repo/data/a/x.tif"},
		{Path: "/repo/data/a/y.tif"},
		{Path: "/repo/data/b", IsDir: true},
		{Path: "/repo/data/b/c", IsDir: true},
		{Path: "/repo/data/b/c/z.mrc"},
		{Path: "/repo/data/top.txt"},
	}, got)
}

func sorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}
