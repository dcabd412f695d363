package tree

import "strings"

// Ext returns the text after the last period of name, ignoring leading
// periods, or "" when there is none.
func Ext(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	i := strings.LastIndexByte(trimmed, '.')
	if i < 0 || i == len(trimmed)-1 {
		return ""
	}
	return trimmed[i+1:]
}

// Suffixes returns every period-delimited suffix of name from longest to
// shortest, so "a.tar.gz" yields "tar.gz" then "gz".
func Suffixes(name string) []string {
	trimmed := strings.TrimLeft(name, ".")
	var out []string
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] == '.' && i < len(trimmed)-1 {
			out = append(out, trimmed[i+1:])
		}
	}
	return out
}
