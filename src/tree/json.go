package tree

import "encoding/json"

type jsonNode struct {
	Name  string     `json:"name"`
	Files []string   `json:"files,omitempty"`
	Dirs  []jsonNode `json:"dirs,omitempty"`
}

func toJSONNode(n *Node) jsonNode {
	out := jsonNode{Name: n.name}
	for _, c := range n.children {
		if c.kind == FileGroup {
			out.Files = append(out.Files, c.names...)
			continue
		}
		out.Dirs = append(out.Dirs, toJSONNode(c))
	}
	return out
}

// MarshalJSON encodes the tree as nested {name, files, dirs} objects in
// insertion order. The container root has an empty name.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSONNode(t.root))
}
