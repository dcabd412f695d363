package scan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// List reads entries from a recorded listing: one path per line, or a single
// line of ", " separated paths. A trailing "/" marks a directory. Relative
// paths are joined to Base.
type List struct {
	Reader io.Reader
	Base   string
}

// Walk implements Source.
func (s List) Walk(ctx context.Context, fn func(Entry) error) error {
	scanner := bufio.NewScanner(s.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		for _, raw := range strings.Split(scanner.Text(), ", ") {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := strings.TrimSpace(raw)
			if item == "" || strings.HasPrefix(item, "#") {
				continue
			}
			e, err := s.parse(item)
			if err != nil {
				return fmt.Errorf("entry list line %d: %w", lineNum, err)
			}
			if err := fn(e); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func (s List) parse(item string) (Entry, error) {
	item = normalizeSlashPath(item)
	isDir := strings.HasSuffix(item, "/")
	p := strings.TrimRight(item, "/")
	if p == "" {
		return Entry{}, fmt.Errorf("entry %q has no name", item)
	}
	if !path.IsAbs(p) && s.Base != "" {
		p = joinSlash(normalizeSlashPath(s.Base), p)
	}
	return Entry{Path: p, IsDir: isDir}, nil
}
