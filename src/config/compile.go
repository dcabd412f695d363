package config

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	bberrors "github.com/sofmeright/bandbox/src/errors"
)

// Rules is the compiled, read-only view of RulesConfig that rules query
// while they run. It is safe for concurrent use.
type Rules struct {
	maxFiles      int
	maxNameLength int
	maxPeriods    int
	includeRoot   bool

	obvious      map[string]struct{}
	dates        []*regexp.Regexp
	accessions   []string
	oddChars     string
	externalRefs []string
	known        map[string]struct{}
	disabled     []string
}

// Fold returns the case-folded form of s used for case-insensitive
// comparisons.
func Fold(s string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(s)
}

// Compile validates cfg.Rules and builds its compiled form.
func Compile(cfg *Config) (*Rules, error) {
	rc := cfg.Rules
	if rc.MaxFiles < 0 {
		return nil, invalid("rules.max_files", "must not be negative, got %d", rc.MaxFiles)
	}
	if rc.MaxNameLength < 1 {
		return nil, invalid("rules.max_name_length", "must be at least 1, got %d", rc.MaxNameLength)
	}
	if rc.MaxPeriods < 0 {
		return nil, invalid("rules.max_periods", "must not be negative, got %d", rc.MaxPeriods)
	}

	r := &Rules{
		maxFiles:      rc.MaxFiles,
		maxNameLength: rc.MaxNameLength,
		maxPeriods:    rc.MaxPeriods,
		includeRoot:   rc.IncludeRoot,
		obvious:       foldedSet(rc.ObviousNames),
		accessions:    nonEmpty(rc.AccessionTokens),
		oddChars:      rc.OddChars,
		disabled:      slices.Clone(rc.Disabled),
	}
	for _, tok := range nonEmpty(rc.ExternalRefTokens) {
		r.externalRefs = append(r.externalRefs, Fold(tok))
	}

	r.known = make(map[string]struct{}, len(rc.KnownExtensions))
	for _, ext := range rc.KnownExtensions {
		ext = Fold(strings.TrimLeft(strings.TrimSpace(ext), "."))
		if ext == "" {
			return nil, invalid("rules.known_extensions", "contains an empty extension")
		}
		r.known[ext] = struct{}{}
	}

	expander := newDateExpander(rc.DateInfixes, rc.MonthNames)
	for i, pattern := range rc.DatePatterns {
		expr, err := expander.expand(pattern)
		if err != nil {
			return nil, invalid("rules.date_patterns", "pattern %d %q: %v", i, pattern, err)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, invalid("rules.date_patterns", "pattern %d %q: %v", i, pattern, err)
		}
		r.dates = append(r.dates, re)
	}
	return r, nil
}

func invalid(key, format string, args ...any) error {
	return bberrors.Newf(bberrors.ErrConfigInvalid, "%s %s", key, fmt.Sprintf(format, args...)).
		WithDetail("key", key)
}

func foldedSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range nonEmpty(items) {
		set[Fold(s)] = struct{}{}
	}
	return set
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *Rules) MaxFiles() int      { return r.maxFiles }
func (r *Rules) MaxNameLength() int { return r.maxNameLength }
func (r *Rules) MaxPeriods() int    { return r.maxPeriods }

// IncludeRoot reports whether top-level directories may be reported as
// empty.
func (r *Rules) IncludeRoot() bool { return r.includeRoot }

// Disabled returns the rule IDs to skip.
func (r *Rules) Disabled() []string { return slices.Clone(r.disabled) }

// IsObviousName reports whether a directory name is uninformative.
func (r *Rules) IsObviousName(name string) bool {
	_, ok := r.obvious[Fold(name)]
	return ok
}

// HasDate reports whether name matches any date pattern.
func (r *Rules) HasDate(name string) bool {
	for _, re := range r.dates {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// HasAccession reports whether name contains an accession token. Tokens are
// matched case-sensitively.
func (r *Rules) HasAccession(name string) bool {
	for _, tok := range r.accessions {
		if strings.Contains(name, tok) {
			return true
		}
	}
	return false
}

// HasOddChar reports whether name contains any of the odd characters.
func (r *Rules) HasOddChar(name string) bool {
	return r.oddChars != "" && strings.ContainsAny(name, r.oddChars)
}

// HasExternalRef reports whether name refers to something outside the
// dataset, such as a paper figure.
func (r *Rules) HasExternalRef(name string) bool {
	folded := Fold(name)
	for _, tok := range r.externalRefs {
		if strings.Contains(folded, tok) {
			return true
		}
	}
	return false
}

// IsKnownExtension reports whether the suffix of ext is a known file
// format. ext may span several periods, as in "tar.gz".
func (r *Rules) IsKnownExtension(ext string) bool {
	_, ok := r.known[Fold(ext)]
	return ok
}

// KnownExtensions returns the known extensions, sorted.
func (r *Rules) KnownExtensions() []string {
	out := make([]string, 0, len(r.known))
	for ext := range r.known {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

// dateExpander rewrites date placeholders into regular expression groups.
type dateExpander struct {
	groups map[string]string
}

var placeholderRE = regexp.MustCompile(`\{([a-z]+)\}`)

func newDateExpander(infixes string, months []string) *dateExpander {
	var seps []string
	for _, r := range infixes {
		seps = append(seps, regexp.QuoteMeta(string(r)))
	}
	sep := ""
	if len(seps) > 0 {
		sep = "(?:" + strings.Join(seps, "|") + ")?"
	}

	names := nonEmpty(months)
	// Longest first, so "september" is preferred over "sep".
	slices.SortStableFunc(names, func(a, b string) int { return cmp.Compare(len(b), len(a)) })
	quoted := make([]string, len(names))
	for i, m := range names {
		quoted[i] = regexp.QuoteMeta(m)
	}
	month := ""
	if len(quoted) > 0 {
		month = "(?i:" + strings.Join(quoted, "|") + ")"
	}

	return &dateExpander{groups: map[string]string{
		"sep":   sep,
		"month": month,
		"day":   `(?:3[01]|[12][0-9]|0?[1-9])`,
		"mm":    `(?:1[0-2]|0?[1-9])`,
		"year":  `(?:19|20)[0-9]{2}`,
		"yy":    `[0-9]{2}`,
	}}
}

// expand substitutes every placeholder and anchors the result at digit
// boundaries so a day never matches inside a longer number.
func (d *dateExpander) expand(pattern string) (string, error) {
	var err error
	body := placeholderRE.ReplaceAllStringFunc(pattern, func(m string) string {
		name := m[1 : len(m)-1]
		group, ok := d.groups[name]
		if !ok {
			err = fmt.Errorf("unknown placeholder %s", m)
			return m
		}
		if group == "" && name == "month" {
			err = fmt.Errorf("{month} used but month_names is empty")
		}
		return group
	})
	if err != nil {
		return "", err
	}
	return `(?:^|\D)` + body + `(?:\D|$)`, nil
}
