package tree

import (
	"context"

	"github.com/sofmeright/bandbox/src/scan"
)

// DefaultSeparator joins path elements in reported paths.
const DefaultSeparator = "/"

// Options control how a tree reports and renders paths.
type Options struct {
	Separator      string
	ShowFileCounts bool
	// Root is the scan root, in the same form as entry paths. When empty a
	// lone top-level directory is taken to be the scan root.
	Root string
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	return o
}

// Tree is a frozen dataset model. Its root is an unnamed container whose
// children are the top-level path elements. A Tree is safe for concurrent
// reads.
type Tree struct {
	root     *Node
	scanRoot *Node
	opts     Options
}

// Root returns the unnamed container directory.
func (t *Tree) Root() *Node { return t.root }

// ScanRoot returns the node of the scanned directory itself, or nil when
// the scan root was removed with the prefix and is the container.
func (t *Tree) ScanRoot() *Node { return t.scanRoot }

// Options returns the tree's options.
func (t *Tree) Options() Options { return t.opts }

// Separator returns the path separator used in reported paths.
func (t *Tree) Separator() string { return t.opts.Separator }

// Build drives src through a Builder and returns the frozen tree.
func Build(ctx context.Context, src scan.Source, prefix string, opts Options) (*Tree, error) {
	b := NewBuilder(prefix, opts)
	err := src.Walk(ctx, func(e scan.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return b.Insert(e)
	})
	if err != nil {
		return nil, err
	}
	return b.Tree(), nil
}
