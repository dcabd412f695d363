package tree

import (
	"fmt"
	"strings"

	bberrors "github.com/sofmeright/bandbox/src/errors"
	"github.com/sofmeright/bandbox/src/scan"
)

// Builder accumulates entries into a Tree. It is not safe for concurrent use.
type Builder struct {
	prefix string
	tree   *Tree
	frozen bool
}

// NewBuilder returns a builder that strips prefix from every inserted path.
func NewBuilder(prefix string, opts Options) *Builder {
	opts = opts.withDefaults()
	return &Builder{
		prefix: strings.TrimRight(prefix, opts.Separator),
		tree:   &Tree{root: newDirectory(""), opts: opts},
	}
}

// Insert places e in the tree. Missing intermediate directories are created;
// re-inserting a directory reuses it and re-inserting a file appends a
// duplicate name.
func (b *Builder) Insert(e scan.Entry) error {
	if b.frozen {
		return bberrors.New(bberrors.ErrInternal, "insert into frozen tree")
	}
	sep := b.tree.opts.Separator

	rel, err := b.relative(e.Path)
	if err != nil {
		return err
	}
	rel = strings.Trim(rel, sep)
	if rel == "" {
		if e.IsDir {
			return nil
		}
		return bberrors.Newf(bberrors.ErrPath, "file entry %q is the tree root", e.Path)
	}

	elems := strings.Split(rel, sep)
	node := b.tree.root
	for _, elem := range elems[:len(elems)-1] {
		if elem == "" {
			continue
		}
		node = node.subdir(elem)
	}

	last := elems[len(elems)-1]
	if e.IsDir {
		node.subdir(last)
	} else {
		node.addFile(last)
	}
	return nil
}

func (b *Builder) relative(p string) (string, error) {
	if b.prefix == "" {
		return p, nil
	}
	rest, ok := strings.CutPrefix(p, b.prefix)
	if !ok {
		return "", bberrors.Wrap(
			fmt.Errorf("path %q is outside prefix %q", p, b.prefix),
			bberrors.ErrPath, "invalid path")
	}
	if rest != "" && !strings.HasPrefix(rest, b.tree.opts.Separator) {
		return "", bberrors.Wrap(
			fmt.Errorf("prefix %q ends inside a path element of %q", b.prefix, p),
			bberrors.ErrPath, "invalid path")
	}
	return rest, nil
}

// Tree freezes the builder and returns the finished tree.
func (b *Builder) Tree() *Tree {
	if !b.frozen {
		b.tree.scanRoot = b.resolveScanRoot()
	}
	b.frozen = true
	return b.tree
}

func (b *Builder) resolveScanRoot() *Node {
	container := b.tree.root
	sep := b.tree.opts.Separator

	if b.tree.opts.Root == "" {
		if len(container.children) == 1 && container.children[0].kind == Directory {
			return container.children[0]
		}
		return nil
	}

	rel, err := b.relative(strings.TrimRight(b.tree.opts.Root, sep))
	if err != nil {
		return nil
	}
	rel = strings.Trim(rel, sep)
	if rel == "" {
		return nil
	}
	node := container
	for _, elem := range strings.Split(rel, sep) {
		next, ok := node.Child(elem)
		if !ok {
			return nil
		}
		node = next
	}
	return node
}
