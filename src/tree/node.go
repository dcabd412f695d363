// Package tree holds the in-memory model of a scanned dataset and the
// predicate walk every rule is expressed through.
package tree

import "slices"

// Kind distinguishes the two node variants.
type Kind int

const (
	// Directory nodes have named sub-directories and at most one FileGroup.
	Directory Kind = iota
	// FileGroup nodes hold the file names of their owning directory.
	FileGroup
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case FileGroup:
		return "files"
	default:
		return "unknown"
	}
}

// FileGroupKey is the name a FileGroup is visited under. It contains a NUL
// byte, which no file or directory name can.
const FileGroupKey = "\x00files"

// Node is a Directory or a FileGroup.
type Node struct {
	name string
	kind Kind

	// Directory
	children []*Node
	dirs     map[string]*Node
	files    *Node

	// FileGroup
	names []string
}

func newDirectory(name string) *Node {
	return &Node{name: name, kind: Directory, dirs: make(map[string]*Node)}
}

// Name returns the directory name, or FileGroupKey for a FileGroup.
func (n *Node) Name() string { return n.name }

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// IsDir reports whether n is a Directory.
func (n *Node) IsDir() bool { return n.kind == Directory }

// Children returns the children of a Directory in first-insertion order.
// The FileGroup, if any, is included at the position it was first created.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Len is the number of children of a Directory, or the number of files in a
// FileGroup.
func (n *Node) Len() int {
	if n.kind == FileGroup {
		return len(n.names)
	}
	return len(n.children)
}

// Child looks up a sub-directory by name.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.dirs[name]
	return c, ok
}

// FileGroup returns the FileGroup of a Directory, or nil.
func (n *Node) FileGroup() *Node { return n.files }

// Files returns the file names of a FileGroup, or of a Directory's FileGroup,
// in insertion order.
func (n *Node) Files() []string {
	switch {
	case n.kind == FileGroup:
		return slices.Clone(n.names)
	case n.files != nil:
		return slices.Clone(n.files.names)
	default:
		return nil
	}
}

// FileCount is len(Files()) without the copy.
func (n *Node) FileCount() int {
	switch {
	case n.kind == FileGroup:
		return len(n.names)
	case n.files != nil:
		return len(n.files.names)
	default:
		return 0
	}
}

func (n *Node) subdir(name string) *Node {
	if c, ok := n.dirs[name]; ok {
		return c
	}
	c := newDirectory(name)
	n.dirs[name] = c
	n.children = append(n.children, c)
	return c
}

func (n *Node) addFile(name string) {
	if n.files == nil {
		n.files = &Node{name: FileGroupKey, kind: FileGroup}
		n.children = append(n.children, n.files)
	}
	n.files.names = append(n.files.names, name)
}
