// Package rules holds the built-in dataset organisation rules.
package rules

import (
	"context"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sofmeright/bandbox/src/config"
	"github.com/sofmeright/bandbox/src/lint"
	"github.com/sofmeright/bandbox/src/tree"
)

// Rule IDs.
const (
	EmptyDirectories   = "empty-directories"
	ObviousNames       = "obvious-names"
	ExcessiveFiles     = "excessive-files"
	MixedFileTypes     = "mixed-file-types"
	LongNames          = "long-names"
	DatesInNames       = "dates-in-names"
	AccessionsInNames  = "accessions-in-names"
	MixedCase          = "mixed-case"
	OddCharacters      = "odd-characters"
	ExcessivePeriods   = "excessive-periods"
	ExternalReferences = "external-references"
	UnknownExtensions  = "unknown-extensions"
	NonASCII           = "non-ascii"
)

// Registry returns a registry holding every built-in rule in reporting
// order.
func Registry() *lint.Registry {
	reg := lint.NewRegistry()
	for _, r := range All() {
		reg.Register(r)
	}
	return reg
}

// All returns the built-in rules in reporting order.
func All() []lint.Rule {
	return []lint.Rule{
		{ID: EmptyDirectories, Description: "directories with no files and at most one sub-directory", Check: emptyDirectories},
		{ID: ObviousNames, Description: "directories with uninformative names", Check: obviousNames},
		{ID: ExcessiveFiles, Description: "directories holding more than max_files files", Check: excessiveFiles},
		{ID: MixedFileTypes, Description: "directories mixing file extensions", Check: mixedFileTypes},
		{ID: LongNames, Description: "names longer than max_name_length characters", Check: longNames},
		{ID: DatesInNames, Description: "file names containing dates", Check: datesInNames},
		{ID: AccessionsInNames, Description: "file names containing archive accession identifiers", Check: accessionsInNames},
		{ID: MixedCase, Description: "names mixing upper and lower case", Check: mixedCase},
		{ID: OddCharacters, Description: "names containing characters that need quoting", Check: oddCharacters},
		{ID: ExcessivePeriods, Description: "names with more than max_periods periods", Check: excessivePeriods},
		{ID: ExternalReferences, Description: "names referring to figures or supplements", Check: externalReferences},
		{ID: UnknownExtensions, Description: "files with an unrecognised extension", Check: unknownExtensions},
		{ID: NonASCII, Description: "names containing non-ASCII characters", Check: nonASCII},
	}
}

// eachName returns a predicate applying match to every directory and file
// name in the tree.
func eachName(match func(name string) bool) tree.Predicate {
	return func(v tree.Visit) []string {
		if !v.IsFileGroup() {
			if match(v.Name) {
				return []string{v.DirPath()}
			}
			return nil
		}
		return matchingFiles(v, match)
	}
}

// eachFile is eachName restricted to file names.
func eachFile(match func(name string) bool) tree.Predicate {
	return func(v tree.Visit) []string {
		if !v.IsFileGroup() {
			return nil
		}
		return matchingFiles(v, match)
	}
}

// ownerPath is the path of the directory owning a FileGroup visit. Files
// directly in the container are reported as "./".
func ownerPath(v tree.Visit) string {
	if v.Prefix == "" {
		return "." + v.Sep
	}
	return v.Prefix
}

func matchingFiles(v tree.Visit, match func(name string) bool) []string {
	var out []string
	for _, f := range v.Node.Files() {
		if match(f) {
			out = append(out, v.FilePath(f))
		}
	}
	return out
}

func emptyDirectories(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	scanRoot := t.ScanRoot()
	return tree.Evaluate(t, func(v tree.Visit) []string {
		if v.IsFileGroup() {
			return nil
		}
		if !cfg.IncludeRoot() && scanRoot != nil && v.Node == scanRoot {
			return nil
		}
		children := v.Node.Children()
		switch {
		case len(children) == 0:
			return []string{v.DirPath()}
		case len(children) == 1 && children[0].IsDir():
			// Only a single sub-directory: a pass-through level.
			return []string{v.DirPath()}
		}
		return nil
	}), nil
}

func obviousNames(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	return tree.Evaluate(t, func(v tree.Visit) []string {
		if !v.IsFileGroup() && cfg.IsObviousName(v.Name) {
			return []string{v.DirPath()}
		}
		return nil
	}), nil
}

func excessiveFiles(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	return tree.Evaluate(t, func(v tree.Visit) []string {
		if v.IsFileGroup() && v.Node.FileCount() > cfg.MaxFiles() {
			return []string{ownerPath(v)}
		}
		return nil
	}), nil
}

func mixedFileTypes(_ context.Context, t *tree.Tree, _ *config.Rules) ([]string, error) {
	return tree.Evaluate(t, func(v tree.Visit) []string {
		if !v.IsFileGroup() {
			return nil
		}
		seen := make(map[string]struct{})
		for _, f := range v.Node.Files() {
			if ext := tree.Ext(f); ext != "" {
				seen[config.Fold(ext)] = struct{}{}
			}
		}
		if len(seen) > 1 {
			return []string{ownerPath(v)}
		}
		return nil
	}), nil
}

func longNames(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	limit := cfg.MaxNameLength()
	return tree.Evaluate(t, eachName(func(name string) bool {
		return utf8.RuneCountInString(name) > limit
	})), nil
}

func datesInNames(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	found := tree.Evaluate(t, eachFile(cfg.HasDate))
	return dedupe(found), nil
}

func accessionsInNames(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	return tree.Evaluate(t, eachFile(cfg.HasAccession)), nil
}

func mixedCase(_ context.Context, t *tree.Tree, _ *config.Rules) ([]string, error) {
	return tree.Evaluate(t, eachName(hasMixedCase)), nil
}

func hasMixedCase(name string) bool {
	var upper, lower bool
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
		if upper && lower {
			return true
		}
	}
	return false
}

func oddCharacters(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	return tree.Evaluate(t, eachName(cfg.HasOddChar)), nil
}

func excessivePeriods(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	limit := cfg.MaxPeriods()
	return tree.Evaluate(t, eachName(func(name string) bool {
		return strings.Count(name, ".") > limit
	})), nil
}

func externalReferences(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	return tree.Evaluate(t, eachName(cfg.HasExternalRef)), nil
}

func unknownExtensions(_ context.Context, t *tree.Tree, cfg *config.Rules) ([]string, error) {
	return tree.Evaluate(t, eachFile(func(name string) bool {
		for _, suffix := range tree.Suffixes(name) {
			if cfg.IsKnownExtension(suffix) {
				return false
			}
		}
		return true
	})), nil
}

func nonASCII(_ context.Context, t *tree.Tree, _ *config.Rules) ([]string, error) {
	return tree.Evaluate(t, eachName(func(name string) bool {
		for i := 0; i < len(name); i++ {
			if name[i] > unicode.MaxASCII {
				return true
			}
		}
		return false
	})), nil
}

func dedupe(paths []string) []string {
	slices.Sort(paths)
	return slices.Compact(paths)
}
