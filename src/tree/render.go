package tree

import (
	"fmt"
	"io"
	"strings"
)

// ExtensionCounts tallies files by extension in first-seen order.
// Extensionless files are not counted.
func ExtensionCounts(files []string) (exts []string, counts map[string]int) {
	counts = make(map[string]int)
	for _, f := range files {
		ext := Ext(f)
		if ext == "" {
			continue
		}
		if _, seen := counts[ext]; !seen {
			exts = append(exts, ext)
		}
		counts[ext]++
	}
	return exts, counts
}

// Render writes t as an indented listing: one "└── name" line per directory,
// one bracketed summary line per FileGroup, a tab per level.
func Render(w io.Writer, t *Tree) error {
	var sb strings.Builder
	render(&sb, t.root, "", t.opts.ShowFileCounts)
	_, err := io.WriteString(w, sb.String())
	return err
}

// String renders t.
func (t *Tree) String() string {
	var sb strings.Builder
	render(&sb, t.root, "", t.opts.ShowFileCounts)
	return sb.String()
}

func render(sb *strings.Builder, dir *Node, indent string, showCounts bool) {
	for _, child := range dir.children {
		if child.kind == Directory {
			fmt.Fprintf(sb, "%s└── %s\n", indent, child.name)
			render(sb, child, indent+"\t", showCounts)
			continue
		}
		fmt.Fprintf(sb, "%s└── [%s]\n", indent, fileSummary(child.names, showCounts))
	}
}

func fileSummary(files []string, showCounts bool) string {
	noun := "files"
	if len(files) == 1 {
		noun = "file"
	}
	head := fmt.Sprintf("%d %s", len(files), noun)
	if !showCounts {
		return head
	}
	exts, counts := ExtensionCounts(files)
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%s=%d", ext, counts[ext]))
	}
	if len(parts) == 0 {
		return head
	}
	return head + ": " + strings.Join(parts, "; ")
}
