// Package output classifies rule results and renders reports.
package output

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/sofmeright/bandbox/src/lint"
)

// Payload is the presentation form of one rule result.
type Payload struct {
	RuleID      string
	Description string
	Status      lint.Status
	// Label is "ok", "fail [N]" or "error".
	Label string
	// Items are the sorted finding paths, truncated when summarising.
	Items []string
	// Omitted counts the items dropped by summarising.
	Omitted int
	// Error is the failure message of an errored rule.
	Error string
}

// Classify turns r into a Payload. With summarise set and more than size
// findings only the first size items are kept.
func Classify(r lint.Result, summarise bool, size int) Payload {
	p := Payload{RuleID: r.RuleID, Description: r.Description, Status: r.Status}

	if r.Status == lint.StatusErrored {
		p.Label = "error"
		if r.Err != nil {
			p.Error = r.Err.Error()
		}
		return p
	}
	if len(r.Findings) == 0 {
		p.Label = "ok"
		return p
	}

	items := r.Paths()
	slices.Sort(items)
	p.Label = fmt.Sprintf("fail [%d]", len(items))
	if summarise && size > 0 && len(items) > size {
		p.Omitted = len(items) - size
		items = items[:size]
	}
	p.Items = items
	return p
}

// ClassifyAll classifies every result in order.
func ClassifyAll(rs lint.Results, summarise bool, size int) []Payload {
	out := make([]Payload, len(rs.Rules))
	for i, r := range rs.Rules {
		out[i] = Classify(r, summarise, size)
	}
	return out
}

// TextOptions control the text report.
type TextOptions struct {
	Title   string
	Elapsed time.Duration
	Color   bool
}

// WriteText renders payloads as a framed report with one row per rule and
// a bullet per item.
func WriteText(w io.Writer, payloads []Payload, opts TextOptions) {
	styles := NewStyles(w, opts.Color)
	title := opts.Title
	if title == "" {
		title = "bandbox"
	}

	sec := NewSection(w, title, opts.Elapsed, styles)
	var ok, fail, errored int
	for _, p := range payloads {
		switch p.Status {
		case lint.StatusOK:
			ok++
			sec.Row("%s %-28s %s", styles.StatusIcon("ok"), p.RuleID, styles.OK.Render(p.Label))
		case lint.StatusFail:
			fail++
			sec.Row("%s %-28s %s", styles.StatusIcon("fail"), p.RuleID, styles.Fail.Render(p.Label))
			for _, item := range p.Items {
				sec.Row("    • %s", item)
			}
			if p.Omitted > 0 {
				sec.Row("    %s", styles.Dim.Render(fmt.Sprintf("… and %d more", p.Omitted)))
			}
		default:
			errored++
			sec.Row("%s %-28s %s", styles.StatusIcon("error"), p.RuleID, styles.Error.Render(p.Label))
			sec.Row("    ! %s", styles.Error.Render(p.Error))
		}
	}
	sec.Separator()

	status := "ok"
	switch {
	case errored > 0:
		status = "error"
	case fail > 0:
		status = "fail"
	}
	sec.Row("%s ok · %s fail · %s error   %s",
		styles.Bold.Render(fmt.Sprint(ok)),
		styles.Bold.Render(fmt.Sprint(fail)),
		styles.Bold.Render(fmt.Sprint(errored)),
		styles.StatusIcon(status))
	sec.Close()
}

// UseColor returns true if colored output should be used on f.
// Respects NO_COLOR env, TERM=dumb, terminal detection and CI.
func UseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) || IsCI()
}
