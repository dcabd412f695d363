package tree

// Visit is what a predicate sees for one node.
type Visit struct {
	// Name is the directory name, or FileGroupKey for a FileGroup.
	Name string
	Node *Node
	// Parent is the directory holding Node; the container root for
	// top-level nodes.
	Parent *Node
	// Prefix is the path of Parent relative to the tree root, ending with
	// the separator, or "" at the top level.
	Prefix string
	// Depth is 1 for top-level nodes.
	Depth int
	Sep   string
}

// IsFileGroup reports whether the visited node is a FileGroup.
func (v Visit) IsFileGroup() bool { return v.Node.kind == FileGroup }

// DirPath is the reported path of a visited directory.
func (v Visit) DirPath() string { return v.Prefix + v.Name + v.Sep }

// FilePath is the reported path of a file in a visited FileGroup.
func (v Visit) FilePath(name string) string { return v.Prefix + name }

// Predicate returns the findings for one visited node.
type Predicate func(v Visit) []string

// Evaluate walks t depth-first, parents before children and children in
// insertion order, concatenating p's output for every node. The container
// root is not visited.
func Evaluate(t *Tree, p Predicate) []string {
	var out []string
	evaluate(t.root, "", 1, t.opts.Separator, p, &out)
	return out
}

func evaluate(dir *Node, prefix string, depth int, sep string, p Predicate, out *[]string) {
	for _, child := range dir.children {
		v := Visit{Name: child.name, Node: child, Parent: dir, Prefix: prefix, Depth: depth, Sep: sep}
		*out = append(*out, p(v)...)
		if child.kind == Directory {
			evaluate(child, prefix+child.name+sep, depth+1, sep, p, out)
		}
	}
}
