package badge

import (
	"fmt"

	"github.com/sofmeright/bandbox/src/lint"
)

// Engine generates SVG badges using a specific font.
type Engine struct {
	metrics *FontMetrics
	// EmbedFont inlines the font as a data URI so the badge renders the
	// same everywhere, at the cost of size.
	EmbedFont bool
}

// New creates a badge engine with the given font metrics.
func New(metrics *FontMetrics) *Engine {
	return &Engine{metrics: metrics}
}

// Badge defines the content and appearance of a single badge.
type Badge struct {
	Label string // left side text
	Value string // right side text
	Color string // hex color for right side (e.g. "#4c1")
}

// Badge colors.
const (
	ColorPassed  = "#4c1"
	ColorWarning = "#dfb317"
	ColorFailed  = "#e05d44"
	ColorErrored = "#9f9f9f"
)

// Generate produces a shields.io-compatible SVG badge string.
func (e *Engine) Generate(b Badge) string {
	return e.renderSVG(b)
}

// ForResults summarises an analysis as "bandbox | passed/total rules".
// Any errored rule turns the badge grey; otherwise the color goes from
// green through yellow to red by pass ratio.
func ForResults(rs lint.Results) Badge {
	ok, fail, errored := rs.Counts()
	total := ok + fail + errored
	b := Badge{Label: "bandbox", Value: fmt.Sprintf("%d/%d rules", ok, total)}

	switch {
	case errored > 0:
		b.Color = ColorErrored
	case fail == 0:
		b.Color = ColorPassed
	case float64(ok)/float64(total) >= 0.75:
		b.Color = ColorWarning
	default:
		b.Color = ColorFailed
	}
	return b
}
